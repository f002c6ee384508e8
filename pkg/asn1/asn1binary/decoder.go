package asn1binary

import (
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// Decoder walks a BER buffer one TLV at a time. The first error is latched:
// once a call fails every later call returns the same error.
type Decoder struct {
	data   []byte
	offset int
	err    error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) Offset() int {
	return d.offset
}

func (d *Decoder) Remaining() int {
	return len(d.data) - d.offset
}

// More reports whether there is unread data and no latched error.
func (d *Decoder) More() bool {
	return d.err == nil && d.offset < len(d.data)
}

func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}
	return d.err
}

// PeekTag returns the tag of the next TLV without consuming it.
func (d *Decoder) PeekTag() (asn1core.Tag, error) {
	if d.err != nil {
		return asn1core.Tag{}, d.err
	}
	tag, _, _, err := parseHeader(d.data[d.offset:])
	if err != nil {
		return asn1core.Tag{}, d.fail(err)
	}
	return tag, nil
}

// ReadElement consumes the next TLV and returns it undecoded.
func (d *Decoder) ReadElement() (asn1go.RawValue, error) {
	if d.err != nil {
		return asn1go.RawValue{}, d.err
	}
	rest := d.data[d.offset:]
	tag, headerLen, length, err := parseHeader(rest)
	if err != nil {
		return asn1go.RawValue{}, d.fail(err)
	}
	end := headerLen + length
	d.offset += end
	return asn1go.RawValue{
		Tag:     tag,
		Content: rest[headerLen:end:end],
		Bytes:   rest[:end:end],
	}, nil
}

// Skip consumes the next TLV.
func (d *Decoder) Skip() error {
	_, err := d.ReadElement()
	return err
}

// ParseElements splits constructed content into its child TLVs.
func ParseElements(content []byte) ([]asn1go.RawValue, error) {
	d := NewDecoder(content)
	var elements []asn1go.RawValue
	for d.More() {
		e, err := d.ReadElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func decodeWith[T any](d *Decoder, parse func(asn1go.RawValue) (T, error)) (T, error) {
	var null T
	e, err := d.ReadElement()
	if err != nil {
		return null, err
	}
	v, err := parse(e)
	if err != nil {
		return null, d.fail(err)
	}
	return v, nil
}

// The Decode* accessors read the next TLV and interpret its content as the
// named type. The tag number is not checked, so they also serve implicitly
// tagged values; the primitive/constructed form is.

func (d *Decoder) DecodeBoolean() (bool, error) {
	return decodeWith(d, ParseBoolean)
}

func (d *Decoder) DecodeInteger() (int64, error) {
	return decodeWith(d, ParseInteger)
}

func (d *Decoder) DecodeEnumerated() (int64, error) {
	return decodeWith(d, ParseEnumerated)
}

func (d *Decoder) DecodeBitString() (asn1go.BitString, error) {
	return decodeWith(d, ParseBitString)
}

func (d *Decoder) DecodeOctetString() ([]byte, error) {
	return decodeWith(d, ParseOctetString)
}

func (d *Decoder) DecodeNull() (asn1go.Null, error) {
	return decodeWith(d, ParseNull)
}

func (d *Decoder) DecodeOID() (asn1go.OID, error) {
	return decodeWith(d, ParseOID)
}

func (d *Decoder) DecodeRelativeOID() (asn1go.RelativeOID, error) {
	return decodeWith(d, ParseRelativeOID)
}

func (d *Decoder) DecodeReal() (float64, error) {
	return decodeWith(d, ParseReal)
}

func (d *Decoder) DecodeString(kind asn1core.StringKind) (string, error) {
	return decodeWith(d, func(e asn1go.RawValue) (string, error) {
		return ParseString(e, kind)
	})
}

func (d *Decoder) DecodeUTCTime() (time.Time, error) {
	return decodeWith(d, ParseUTCTime)
}

func (d *Decoder) DecodeGeneralizedTime() (time.Time, error) {
	return decodeWith(d, ParseGeneralizedTime)
}

// DecodeSequence returns the child TLVs of a SEQUENCE (or SEQUENCE OF).
func (d *Decoder) DecodeSequence() ([]asn1go.RawValue, error) {
	return decodeWith(d, ParseSequence)
}

// DecodeSet returns the child TLVs of a SET (or SET OF).
func (d *Decoder) DecodeSet() ([]asn1go.RawValue, error) {
	return decodeWith(d, ParseSet)
}

func ParseSequence(e asn1go.RawValue) ([]asn1go.RawValue, error) {
	if !e.Tag.Constructed {
		return nil, asn1error.New(asn1error.WrongForm, "Sequence must be constructed")
	}
	return ParseElements(e.Content)
}

func ParseSet(e asn1go.RawValue) ([]asn1go.RawValue, error) {
	if !e.Tag.Constructed {
		return nil, asn1error.New(asn1error.WrongForm, "Set must be constructed")
	}
	return ParseElements(e.Content)
}
