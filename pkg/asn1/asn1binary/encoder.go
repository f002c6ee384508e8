package asn1binary

import (
	"bytes"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// Encoder appends TLVs to an in-memory buffer. Like Decoder it latches the
// first error; later writes are ignored and return that error.
type Encoder struct {
	buf bytes.Buffer
	err error
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Bytes returns the encoding so far, or the latched error.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

// Fail latches err as if a write had failed. Callers that build content
// themselves use it to stop the session.
func (e *Encoder) Fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// WriteElement writes one TLV. The constructed bit of tag is written as given.
func (e *Encoder) WriteElement(tag asn1core.Tag, content []byte) error {
	if e.err != nil {
		return e.err
	}
	e.buf.Write(EncodeIdentifier(tag))
	e.buf.Write(EncodeDefiniteLength(len(content)))
	e.buf.Write(content)
	return nil
}

// WriteRaw copies pre-encoded TLVs.
func (e *Encoder) WriteRaw(encoded []byte) error {
	if e.err != nil {
		return e.err
	}
	e.buf.Write(encoded)
	return nil
}

// WriteConstructed encodes children with fill and wraps them in a constructed
// TLV with the given tag. An error from fill is latched here too.
func (e *Encoder) WriteConstructed(tag asn1core.Tag, fill func(child *Encoder) error) error {
	if e.err != nil {
		return e.err
	}
	child := NewEncoder()
	if err := fill(child); err != nil {
		return e.Fail(err)
	}
	content, err := child.Bytes()
	if err != nil {
		return e.Fail(err)
	}
	return e.WriteElement(tag.WithConstructed(true), content)
}

func (e *Encoder) writeUniversal(number uint32, content []byte, err error) error {
	if err != nil {
		return e.Fail(err)
	}
	return e.WriteElement(asn1core.NewUniversal(number), content)
}

func (e *Encoder) EncodeBoolean(v bool) error {
	return e.writeUniversal(asn1core.TagBoolean, BooleanContent(v), nil)
}

func (e *Encoder) EncodeInteger(v int64) error {
	return e.writeUniversal(asn1core.TagInteger, IntegerContent(v), nil)
}

func (e *Encoder) EncodeEnumerated(v int64) error {
	return e.writeUniversal(asn1core.TagEnumerated, IntegerContent(v), nil)
}

func (e *Encoder) EncodeBitString(v asn1go.BitString) error {
	return e.writeUniversal(asn1core.TagBitString, BitStringContent(v), nil)
}

func (e *Encoder) EncodeOctetString(v []byte) error {
	return e.writeUniversal(asn1core.TagOctetString, v, nil)
}

func (e *Encoder) EncodeNull() error {
	return e.writeUniversal(asn1core.TagNull, nil, nil)
}

func (e *Encoder) EncodeOID(v asn1go.OID) error {
	content, err := OIDContent(v)
	return e.writeUniversal(asn1core.TagOID, content, err)
}

func (e *Encoder) EncodeRelativeOID(v asn1go.RelativeOID) error {
	return e.writeUniversal(asn1core.TagRelativeOID, RelativeOIDContent(v), nil)
}

func (e *Encoder) EncodeReal(v float64) error {
	return e.writeUniversal(asn1core.TagReal, RealContent(v), nil)
}

func (e *Encoder) EncodeString(kind asn1core.StringKind, v string) error {
	content, err := StringContent(kind, v)
	return e.writeUniversal(kind.Number(), content, err)
}

func (e *Encoder) EncodeUTCTime(v time.Time) error {
	content, err := UTCTimeContent(v)
	return e.writeUniversal(asn1core.TagUTCTime, content, err)
}

func (e *Encoder) EncodeGeneralizedTime(v time.Time) error {
	return e.writeUniversal(asn1core.TagGeneralizedTime, GeneralizedTimeContent(v), nil)
}

func (e *Encoder) EncodeSequence(fill func(child *Encoder) error) error {
	return e.WriteConstructed(asn1core.NewUniversal(asn1core.TagSequence), fill)
}

func (e *Encoder) EncodeSet(fill func(child *Encoder) error) error {
	return e.WriteConstructed(asn1core.NewUniversal(asn1core.TagSet), fill)
}
