package asn1codec

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

// EncodeValue encodes v as a value of type t.
func EncodeValue(t asn1schema.Type, v any) ([]byte, error) {
	e := asn1binary.NewEncoder()
	if err := encodeElement(e, t, v); err != nil {
		return nil, err
	}
	return e.Bytes()
}

// EncodeElement appends the encoding of v to an encoder that is building a
// larger value.
func EncodeElement(e *asn1binary.Encoder, t asn1schema.Type, v any) error {
	return encodeElement(e, t, v)
}

func encodeElement(e *asn1binary.Encoder, t asn1schema.Type, v any) error {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return err
		}
		return encodeElement(e, resolved, v)
	case *asn1schema.Optional:
		return encodeElement(e, t.Inner(), v)
	case *asn1schema.Default:
		return encodeElement(e, t.Inner(), v)
	case *asn1schema.Choice:
		return encodeChoice(e, t, v)
	case *asn1schema.Tagged:
		return encodeTagged(e, t.Tag(), t, v)
	}
	tags := t.Tags()
	if len(tags) != 1 {
		return asn1error.New(asn1error.Unsupported, "Unsupported type %s", t.TypeName())
	}
	return encodeTagged(e, tags[0], t, v)
}

// encodeTagged writes v as t under tag. It is encodeElement with the tag of
// t replaced, which is what an implicit tag does.
func encodeTagged(e *asn1binary.Encoder, tag asn1core.Tag, t asn1schema.Type, v any) error {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return err
		}
		return encodeTagged(e, tag, resolved, v)
	case *asn1schema.Optional:
		return encodeTagged(e, tag, t.Inner(), v)
	case *asn1schema.Default:
		return encodeTagged(e, tag, t.Inner(), v)
	case *asn1schema.Tagged:
		if t.IsExplicit() {
			return e.WriteConstructed(tag, func(child *asn1binary.Encoder) error {
				return encodeElement(child, t.Inner(), v)
			})
		}
		return encodeTagged(e, tag, t.Inner(), v)
	case *asn1schema.Choice:
		return e.WriteConstructed(tag, func(child *asn1binary.Encoder) error {
			return encodeChoice(child, t, v)
		})
	}

	if err := asn1schema.CheckValue(t, v); err != nil {
		return e.Fail(err)
	}
	content, constructed, err := encodeContent(t, v)
	if err != nil {
		return e.Fail(err)
	}
	return e.WriteElement(tag.WithConstructed(constructed), content)
}

// encodeContent produces the content octets of v, which CheckValue has
// already accepted for t, and whether they use the constructed form.
func encodeContent(t asn1schema.Type, v any) ([]byte, bool, error) {
	switch t := t.(type) {
	case *asn1schema.Boolean:
		b, _ := asn1go.AsBool(v)
		return asn1binary.BooleanContent(b), false, nil
	case *asn1schema.Integer:
		n, _ := asn1go.AsInt64(v)
		return asn1binary.IntegerContent(n), false, nil
	case *asn1schema.Enumerated:
		n, ok := asn1go.AsInt64(v)
		if !ok {
			n, _ = t.ValueOf(v.(string))
		}
		return asn1binary.IntegerContent(n), false, nil
	case *asn1schema.BitString:
		b, _ := asn1go.AsBitString(v)
		return asn1binary.BitStringContent(b), false, nil
	case *asn1schema.OctetString:
		b, _ := asn1go.AsBytes(v)
		return b, false, nil
	case *asn1schema.Null:
		return nil, false, nil
	case *asn1schema.ObjectIdentifier:
		oid, _ := asn1go.AsOID(v)
		content, err := asn1binary.OIDContent(oid)
		return content, false, err
	case *asn1schema.RelativeOID:
		oid, _ := asn1go.AsRelativeOID(v)
		return asn1binary.RelativeOIDContent(oid), false, nil
	case *asn1schema.Real:
		f, _ := asn1go.AsFloat64(v)
		return asn1binary.RealContent(f), false, nil
	case *asn1schema.String:
		s, _ := asn1go.AsString(v)
		content, err := asn1binary.StringContent(t.Kind, s)
		return content, false, err
	case *asn1schema.UTCTime:
		ts, _ := asn1go.AsTime(v)
		content, err := asn1binary.UTCTimeContent(ts)
		return content, false, err
	case *asn1schema.GeneralizedTime:
		ts, _ := asn1go.AsTime(v)
		return asn1binary.GeneralizedTimeContent(ts), false, nil
	case *asn1schema.Sequence:
		m, _ := asn1go.AsMap(v)
		content, err := encodeComponents(m, t.Components(), t.Extensible(), "SEQUENCE")
		return content, true, err
	case *asn1schema.Set:
		m, _ := asn1go.AsMap(v)
		content, err := encodeComponents(m, t.Components(), t.Extensible(), "SET")
		return content, true, err
	case *asn1schema.SequenceOf:
		list, _ := asn1go.AsList(v)
		content, err := encodeList(list, t.Element())
		return content, true, err
	case *asn1schema.SetOf:
		list, _ := asn1go.AsList(v)
		content, err := encodeList(list, t.Element())
		return content, true, err
	case *asn1schema.External:
		m, _ := asn1go.AsMap(v)
		content, err := externalContent(m)
		return content, true, err
	case *asn1schema.EmbeddedPDV:
		return encodeContent(embeddedPDV, v)
	}
	return nil, false, asn1error.New(asn1error.Unsupported, "Unsupported type %s", t.TypeName())
}

// encodeComponents writes the members of a SEQUENCE or SET in declaration
// order. Absent OPTIONAL members and DEFAULT members equal to their default
// are left out.
func encodeComponents(m *asn1go.OrderedMap, components []asn1schema.Component, extensible bool, typeName string) ([]byte, error) {
	e := asn1binary.NewEncoder()
	known := make(map[string]bool, len(components))
	for _, c := range components {
		known[c.Name] = true
		v, present := m.Get(c.Name)
		optional, def := presence(c.Type)
		if !present {
			if optional {
				continue
			}
			return nil, asn1error.New(asn1error.SchemaViolation, "Missing %s component %s", typeName, c.Name)
		}
		if def != nil && asn1go.Equal(v, def.Value()) {
			continue
		}
		if err := encodeElement(e, c.Type, v); err != nil {
			return nil, err
		}
	}
	if !extensible {
		for _, key := range m.Keys() {
			if !known[key] {
				return nil, asn1error.New(asn1error.SchemaViolation, "Unknown %s component %s", typeName, key)
			}
		}
	}
	return e.Bytes()
}

func encodeList(list []any, element asn1schema.Type) ([]byte, error) {
	e := asn1binary.NewEncoder()
	for _, v := range list {
		if err := encodeElement(e, element, v); err != nil {
			return nil, err
		}
	}
	return e.Bytes()
}

// encodeChoice writes the chosen alternative. An extensible CHOICE also takes
// the undecoded element produced for an unknown alternative.
func encodeChoice(e *asn1binary.Encoder, t *asn1schema.Choice, v any) error {
	if err := asn1schema.CheckValue(t, v); err != nil {
		return e.Fail(err)
	}
	if raw, ok := asn1go.AsRawValue(v); ok {
		return e.WriteRaw(raw.Bytes)
	}
	c, _ := asn1go.AsChoice(v)
	if raw, ok := asn1go.AsRawValue(c.Value); ok && c.Identifier == "" && t.Extensible() {
		return e.WriteRaw(raw.Bytes)
	}
	alt, ok := t.Alternative(c.Identifier)
	if !ok {
		return e.Fail(asn1error.New(asn1error.SchemaViolation, "Unknown CHOICE alternative %s", c.Identifier))
	}
	return encodeElement(e, alt.Type, c.Value)
}
