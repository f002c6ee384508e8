// Package asn1codec drives the BER primitives in asn1binary from an
// asn1schema type tree, turning whole values into bytes and back.
//
// Decoded values use the shapes described by the asn1go accessors: bool,
// int64, float64, []byte, asn1go.BitString, asn1go.Null, asn1go.OID,
// asn1go.RelativeOID, string, time.Time, *asn1go.OrderedMap for SEQUENCE,
// SET, EXTERNAL and EMBEDDED PDV, []any for SEQUENCE OF and SET OF, and
// asn1go.Choice for CHOICE. ENUMERATED values decode to the item name.
package asn1codec

import (
	"bytes"
	"strconv"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

// DecodeValue decodes data, which must hold exactly one value of type t.
func DecodeValue(data []byte, t asn1schema.Type) (any, error) {
	d := asn1binary.NewDecoder(data)
	e, err := d.ReadElement()
	if err != nil {
		return nil, err
	}
	if d.Remaining() > 0 {
		return nil, asn1error.New(asn1error.MalformedLength, "Unexpected data after value")
	}
	return decodeElement(e, t)
}

// DecodeElement decodes an element that has already been split out of a
// larger buffer.
func DecodeElement(e asn1go.RawValue, t asn1schema.Type) (any, error) {
	return decodeElement(e, t)
}

func errUnexpectedTag(e asn1go.RawValue, t asn1schema.Type) error {
	return asn1error.New(asn1error.SchemaViolation, "Unexpected tag %s for %s", e.Tag, t.TypeName())
}

// decodeElement checks that the tag of e introduces a value of t and decodes
// it.
func decodeElement(e asn1go.RawValue, t asn1schema.Type) (any, error) {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return decodeElement(e, resolved)
	case *asn1schema.Optional:
		return decodeElement(e, t.Inner())
	case *asn1schema.Default:
		return decodeElement(e, t.Inner())
	case *asn1schema.Choice:
		return decodeChoice(e, t)
	case *asn1schema.Tagged:
		if !e.Tag.Equal(t.Tag()) {
			return nil, errUnexpectedTag(e, t)
		}
		return decodeContent(e, t)
	}
	if !asn1schema.MatchesTag(t, e.Tag) {
		return nil, errUnexpectedTag(e, t)
	}
	return decodeContent(e, t)
}

// decodeExplicit unwraps the single TLV carried by an explicit tag.
func decodeExplicit(e asn1go.RawValue, t *asn1schema.Tagged) (any, error) {
	if !e.Tag.Constructed {
		return nil, asn1error.New(asn1error.WrongForm, "Explicit tag %s must be constructed", t.Tag())
	}
	children, err := asn1binary.ParseElements(e.Content)
	if err != nil {
		return nil, err
	}
	if len(children) != 1 {
		return nil, asn1error.New(asn1error.InvalidContent, "Explicit tag %s must contain exactly one value", t.Tag())
	}
	return decodeElement(children[0], t.Inner())
}

// decodeContent interprets the content of e as t without looking at the tag,
// which is how an implicit tag is decoded.
func decodeContent(e asn1go.RawValue, t asn1schema.Type) (any, error) {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return decodeContent(e, resolved)
	case *asn1schema.Optional:
		return decodeContent(e, t.Inner())
	case *asn1schema.Default:
		return decodeContent(e, t.Inner())
	case *asn1schema.Tagged:
		if t.IsExplicit() {
			return decodeExplicit(e, t)
		}
		return decodeContent(e, t.Inner())
	case *asn1schema.Choice:
		return decodeChoice(e, t)
	case *asn1schema.Boolean:
		return asn1binary.ParseBoolean(e)
	case *asn1schema.Integer:
		n, err := asn1binary.ParseInteger(e)
		if err != nil {
			return nil, err
		}
		if !t.InRange(n) {
			return nil, asn1error.New(asn1error.InvalidContent, "INTEGER value %d out of range", n)
		}
		return n, nil
	case *asn1schema.Enumerated:
		n, err := asn1binary.ParseEnumerated(e)
		if err != nil {
			return nil, err
		}
		if name, ok := t.NameOf(n); ok {
			return name, nil
		}
		if t.Extensible() {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, asn1error.New(asn1error.SchemaViolation, "Unknown enumeration value %d", n)
	case *asn1schema.BitString:
		return asn1binary.ParseBitString(e)
	case *asn1schema.OctetString:
		return asn1binary.ParseOctetString(e)
	case *asn1schema.Null:
		return asn1binary.ParseNull(e)
	case *asn1schema.ObjectIdentifier:
		return asn1binary.ParseOID(e)
	case *asn1schema.RelativeOID:
		return asn1binary.ParseRelativeOID(e)
	case *asn1schema.Real:
		return asn1binary.ParseReal(e)
	case *asn1schema.String:
		return asn1binary.ParseString(e, t.Kind)
	case *asn1schema.UTCTime:
		return asn1binary.ParseUTCTime(e)
	case *asn1schema.GeneralizedTime:
		return asn1binary.ParseGeneralizedTime(e)
	case *asn1schema.Sequence:
		children, err := asn1binary.ParseSequence(e)
		if err != nil {
			return nil, err
		}
		return decodeSequence(children, t)
	case *asn1schema.Set:
		children, err := asn1binary.ParseSet(e)
		if err != nil {
			return nil, err
		}
		return decodeSet(children, t)
	case *asn1schema.SequenceOf:
		children, err := asn1binary.ParseSequence(e)
		if err != nil {
			return nil, err
		}
		return decodeList(children, t.Element())
	case *asn1schema.SetOf:
		children, err := asn1binary.ParseSet(e)
		if err != nil {
			return nil, err
		}
		return decodeList(children, t.Element())
	case *asn1schema.External:
		return decodeExternal(e)
	case *asn1schema.EmbeddedPDV:
		return decodeContent(e, embeddedPDV)
	}
	return nil, asn1error.New(asn1error.Unsupported, "Unsupported type %s", t.TypeName())
}

// presence reports whether a component may be left out, and its default.
func presence(t asn1schema.Type) (optional bool, def *asn1schema.Default) {
	switch w := asn1schema.Deref(t).(type) {
	case *asn1schema.Optional:
		return true, nil
	case *asn1schema.Default:
		return true, w
	}
	return false, nil
}

// openChoice reports whether t is an untagged extensible CHOICE, which takes
// elements of any tag once no other component claims them.
func openChoice(t asn1schema.Type) bool {
	for {
		switch w := asn1schema.Deref(t).(type) {
		case *asn1schema.Optional:
			t = w.Inner()
		case *asn1schema.Default:
			t = w.Inner()
		case *asn1schema.Choice:
			return w.Extensible()
		default:
			return false
		}
	}
}

func claimedBy(components []asn1schema.Component, tag asn1core.Tag) bool {
	for _, c := range components {
		if asn1schema.MatchesTag(c.Type, tag) {
			return true
		}
	}
	return false
}

// decodeSequence matches children against the components by position. A
// component consumes the next child only when the tags agree, or when it is an
// open CHOICE and no later component could take the child.
func decodeSequence(children []asn1go.RawValue, t *asn1schema.Sequence) (*asn1go.OrderedMap, error) {
	result := asn1go.NewOrderedMap()
	components := t.Components()
	next := 0
	for i, c := range components {
		if next < len(children) && (asn1schema.MatchesTag(c.Type, children[next].Tag) ||
			openChoice(c.Type) && !claimedBy(components[i+1:], children[next].Tag)) {
			v, err := decodeElement(children[next], c.Type)
			if err != nil {
				return nil, err
			}
			result.Set(c.Name, v)
			next++
			continue
		}
		optional, def := presence(c.Type)
		switch {
		case def != nil:
			result.Set(c.Name, def.Value())
		case optional:
		case next < len(children):
			return nil, asn1error.New(asn1error.SchemaViolation, "Required SEQUENCE component %s missing", c.Name)
		default:
			return nil, asn1error.New(asn1error.SchemaViolation, "Required SEQUENCE components missing")
		}
	}
	if next < len(children) && !t.Extensible() {
		return nil, asn1error.New(asn1error.SchemaViolation, "Too many SEQUENCE components")
	}
	return result, nil
}

// decodeSet matches each child against any component not yet seen, by tag. A
// child no component claims goes to an open CHOICE if there is one. The result
// lists components in declaration order.
func decodeSet(children []asn1go.RawValue, t *asn1schema.Set) (*asn1go.OrderedMap, error) {
	components := t.Components()
	values := make([]any, len(components))
	seen := make([]bool, len(components))
	for _, child := range children {
		index := -1
		for i, c := range components {
			if !seen[i] && asn1schema.MatchesTag(c.Type, child.Tag) {
				index = i
				break
			}
		}
		if index < 0 && !claimedBy(components, child.Tag) {
			for i, c := range components {
				if !seen[i] && openChoice(c.Type) {
					index = i
					break
				}
			}
		}
		if index < 0 {
			if t.Extensible() {
				continue
			}
			return nil, asn1error.New(asn1error.SchemaViolation, "Unknown SET component")
		}
		v, err := decodeElement(child, components[index].Type)
		if err != nil {
			return nil, err
		}
		values[index] = v
		seen[index] = true
	}

	result := asn1go.NewOrderedMap()
	for i, c := range components {
		if seen[i] {
			result.Set(c.Name, values[i])
			continue
		}
		optional, def := presence(c.Type)
		switch {
		case def != nil:
			result.Set(c.Name, def.Value())
		case !optional:
			return nil, asn1error.New(asn1error.SchemaViolation, "Required SET components missing")
		}
	}
	return result, nil
}

func decodeList(children []asn1go.RawValue, element asn1schema.Type) ([]any, error) {
	list := make([]any, 0, len(children))
	for _, child := range children {
		v, err := decodeElement(child, element)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// decodeChoice picks the first alternative whose tags include the tag of e.
// An extensible CHOICE returns elements it does not recognise undecoded.
func decodeChoice(e asn1go.RawValue, t *asn1schema.Choice) (any, error) {
	for _, alt := range t.Alternatives() {
		if asn1schema.MatchesTag(alt.Type, e.Tag) {
			v, err := decodeElement(e, alt.Type)
			if err != nil {
				return nil, err
			}
			return asn1go.Choice{Identifier: alt.Name, Value: v}, nil
		}
	}
	if t.Extensible() {
		return asn1go.Choice{Value: cloneRaw(e)}, nil
	}
	return nil, asn1error.New(asn1error.SchemaViolation, "Unknown CHOICE value")
}

// cloneRaw copies e so it does not keep the input buffer alive.
func cloneRaw(e asn1go.RawValue) asn1go.RawValue {
	all := bytes.Clone(e.Bytes)
	return asn1go.RawValue{
		Tag:     e.Tag,
		Content: all[len(all)-len(e.Content):],
		Bytes:   all,
	}
}
