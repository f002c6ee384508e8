package asn1schema

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// MatchesTag reports whether tag can introduce a value of t. The constructed
// bit is ignored.
func MatchesTag(t Type, tag asn1core.Tag) bool {
	for _, candidate := range t.Tags() {
		if candidate.Equal(tag) {
			return true
		}
	}
	return false
}

// Deref follows references until it reaches a concrete type. A reference that
// cannot be resolved is returned as is.
func Deref(t Type) Type {
	for {
		ref, ok := t.(*Referenced)
		if !ok {
			return t
		}
		resolved, err := ref.Resolve()
		if err != nil {
			return t
		}
		t = resolved
	}
}

// BaseType strips references, tags and OPTIONAL/DEFAULT wrappers.
func BaseType(t Type) Type {
	for {
		switch w := Deref(t).(type) {
		case *Tagged:
			t = w.inner
		case *Optional:
			t = w.inner
		case *Default:
			t = w.inner
		default:
			return w
		}
	}
}

func collectTags(t Type) ([]asn1core.Tag, error) {
	switch t := t.(type) {
	case *Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return collectTags(resolved)
	case *Optional:
		return collectTags(t.inner)
	case *Default:
		return collectTags(t.inner)
	case *Choice:
		var tags []asn1core.Tag
		for _, alt := range t.alternatives {
			altTags, err := collectTags(alt.Type)
			if err != nil {
				return nil, err
			}
			tags = append(tags, altTags...)
		}
		return tags, nil
	}
	return t.Tags(), nil
}

func unknownType(v any, t Type) error {
	return asn1error.New(asn1error.ValueShape, "Unknown type %s provided for %s", asn1go.TypeName(v), t.TypeName())
}

// CheckValue validates the shape of v against t before it is encoded. Leaf
// values are checked fully, composite values only at the top level since the
// encoder checks their members as it reaches them.
func CheckValue(t Type, v any) error {
	switch t := t.(type) {
	case *Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return err
		}
		return CheckValue(resolved, v)
	case *Optional:
		return CheckValue(t.inner, v)
	case *Default:
		return CheckValue(t.inner, v)
	case *Tagged:
		return CheckValue(t.inner, v)
	case *Boolean:
		if _, ok := asn1go.AsBool(v); !ok {
			return unknownType(v, t)
		}
	case *Integer:
		n, ok := asn1go.AsInt64(v)
		if !ok {
			return unknownType(v, t)
		}
		if !t.InRange(n) {
			return asn1error.New(asn1error.InvalidContent, "INTEGER value %d out of range", n)
		}
	case *BitString:
		if _, ok := asn1go.AsBitString(v); !ok {
			return unknownType(v, t)
		}
	case *OctetString:
		if _, ok := asn1go.AsBytes(v); !ok {
			return unknownType(v, t)
		}
	case *Null:
		if !asn1go.IsNull(v) {
			return unknownType(v, t)
		}
	case *ObjectIdentifier:
		if _, ok := asn1go.AsOID(v); !ok {
			return unknownType(v, t)
		}
	case *RelativeOID:
		if _, ok := asn1go.AsRelativeOID(v); !ok {
			return unknownType(v, t)
		}
	case *Real:
		if _, ok := asn1go.AsFloat64(v); !ok {
			return unknownType(v, t)
		}
	case *Enumerated:
		if name, ok := v.(string); ok {
			if _, known := t.ValueOf(name); !known {
				return asn1error.New(asn1error.SchemaViolation, "Unknown enumeration name %s", name)
			}
			return nil
		}
		n, ok := asn1go.AsInt64(v)
		if !ok {
			return unknownType(v, t)
		}
		if _, known := t.NameOf(n); !known && !t.extensible {
			return asn1error.New(asn1error.SchemaViolation, "Unknown enumeration value %d", n)
		}
	case *String:
		s, ok := asn1go.AsString(v)
		if !ok {
			return unknownType(v, t)
		}
		return asn1binary.ValidateString(t.Kind, s)
	case *UTCTime, *GeneralizedTime:
		if _, ok := asn1go.AsTime(v); !ok {
			return unknownType(v, t)
		}
	case *Sequence, *Set, *External, *EmbeddedPDV:
		if _, ok := asn1go.AsMap(v); !ok {
			return unknownType(v, t)
		}
	case *SequenceOf, *SetOf:
		if _, ok := asn1go.AsList(v); !ok {
			return unknownType(v, t)
		}
	case *Choice:
		if _, ok := asn1go.AsChoice(v); ok {
			return nil
		}
		if _, ok := asn1go.AsRawValue(v); ok && t.extensible {
			return nil
		}
		return unknownType(v, t)
	}
	return nil
}
