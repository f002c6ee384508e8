package asn1codec

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

func ctx(n uint32) asn1core.Tag {
	return asn1core.New(asn1core.ClassContextSpecific, n)
}

// embeddedPDV is the automatically tagged SEQUENCE behind EMBEDDED PDV.
var embeddedPDV = asn1schema.NewSequence(false,
	asn1schema.Component{Name: "identification", Type: asn1schema.NewExplicit(ctx(0), asn1schema.NewChoice(false,
		asn1schema.Component{Name: "syntaxes", Type: asn1schema.NewImplicit(ctx(0), asn1schema.NewSequence(false,
			asn1schema.Component{Name: "abstract", Type: asn1schema.NewImplicit(ctx(0), &asn1schema.ObjectIdentifier{})},
			asn1schema.Component{Name: "transfer", Type: asn1schema.NewImplicit(ctx(1), &asn1schema.ObjectIdentifier{})},
		))},
		asn1schema.Component{Name: "syntax", Type: asn1schema.NewImplicit(ctx(1), &asn1schema.ObjectIdentifier{})},
		asn1schema.Component{Name: "presentation-context-id", Type: asn1schema.NewImplicit(ctx(2), &asn1schema.Integer{})},
		asn1schema.Component{Name: "context-negotiation", Type: asn1schema.NewImplicit(ctx(3), asn1schema.NewSequence(false,
			asn1schema.Component{Name: "presentation-context-id", Type: asn1schema.NewImplicit(ctx(0), &asn1schema.Integer{})},
			asn1schema.Component{Name: "transfer-syntax", Type: asn1schema.NewImplicit(ctx(1), &asn1schema.ObjectIdentifier{})},
		))},
		asn1schema.Component{Name: "transfer-syntax", Type: asn1schema.NewImplicit(ctx(4), &asn1schema.ObjectIdentifier{})},
		asn1schema.Component{Name: "fixed", Type: asn1schema.NewImplicit(ctx(5), &asn1schema.Null{})},
	))},
	asn1schema.Component{Name: "data-value", Type: asn1schema.NewImplicit(ctx(2), &asn1schema.OctetString{})},
)

func errExternalIdentification() error {
	return asn1error.New(asn1error.Unsupported, "Unsupported identification for EXTERNAL type")
}

// decodeExternal reads the X.690 8.18 form of EXTERNAL:
//
//	[UNIVERSAL 8] IMPLICIT SEQUENCE {
//	    direct-reference      OBJECT IDENTIFIER OPTIONAL,
//	    indirect-reference    INTEGER OPTIONAL,
//	    data-value-descriptor ObjectDescriptor OPTIONAL,
//	    encoding CHOICE {
//	        single-ASN1-type [0] ANY,
//	        octet-aligned    [1] IMPLICIT OCTET STRING,
//	        arbitrary        [2] IMPLICIT BIT STRING } }
//
// and presents it with the identification CHOICE of the abstract type.
func decodeExternal(e asn1go.RawValue) (any, error) {
	children, err := asn1binary.ParseSequence(e)
	if err != nil {
		return nil, err
	}
	next := 0
	take := func(class asn1core.Class, number uint32) (asn1go.RawValue, bool) {
		if next < len(children) && children[next].Tag.Matches(class, number) {
			next++
			return children[next-1], true
		}
		return asn1go.RawValue{}, false
	}

	var direct asn1go.OID
	var indirect int64
	hasDirect, hasIndirect := false, false
	if child, ok := take(asn1core.ClassUniversal, asn1core.TagOID); ok {
		if direct, err = asn1binary.ParseOID(child); err != nil {
			return nil, err
		}
		hasDirect = true
	}
	if child, ok := take(asn1core.ClassUniversal, asn1core.TagInteger); ok {
		if indirect, err = asn1binary.ParseInteger(child); err != nil {
			return nil, err
		}
		hasIndirect = true
	}

	result := asn1go.NewOrderedMap()
	switch {
	case hasDirect && hasIndirect:
		result.Set("identification", asn1go.Choice{
			Identifier: "context-negotiation",
			Value: asn1go.NewOrderedMap().
				Set("presentation-context-id", indirect).
				Set("transfer-syntax", direct),
		})
	case hasDirect:
		result.Set("identification", asn1go.Choice{Identifier: "syntax", Value: direct})
	case hasIndirect:
		result.Set("identification", asn1go.Choice{Identifier: "presentation-context-id", Value: indirect})
	default:
		return nil, errExternalIdentification()
	}

	if child, ok := take(asn1core.ClassUniversal, asn1core.TagObjectDescriptor); ok {
		descriptor, err := asn1binary.ParseString(child, asn1core.ObjectDescriptor)
		if err != nil {
			return nil, err
		}
		result.Set("data-value-descriptor", descriptor)
	}

	if next >= len(children) {
		return nil, asn1error.New(asn1error.SchemaViolation, "Required SEQUENCE component encoding missing")
	}
	encoding := children[next]
	next++
	var data any
	switch {
	case encoding.Tag.Matches(asn1core.ClassContextSpecific, 0):
		if !encoding.Tag.Constructed {
			return nil, asn1error.New(asn1error.WrongForm, "Explicit tag %s must be constructed", encoding.Tag.Key())
		}
		inner, err := asn1binary.ParseElements(encoding.Content)
		if err != nil {
			return nil, err
		}
		if len(inner) != 1 {
			return nil, asn1error.New(asn1error.InvalidContent, "Explicit tag %s must contain exactly one value", encoding.Tag.Key())
		}
		data = cloneRaw(inner[0])
	case encoding.Tag.Matches(asn1core.ClassContextSpecific, 1):
		if data, err = asn1binary.ParseOctetString(encoding); err != nil {
			return nil, err
		}
	case encoding.Tag.Matches(asn1core.ClassContextSpecific, 2):
		if data, err = asn1binary.ParseBitString(encoding); err != nil {
			return nil, err
		}
	default:
		return nil, asn1error.New(asn1error.SchemaViolation, "Unknown CHOICE value")
	}
	if next < len(children) {
		return nil, asn1error.New(asn1error.SchemaViolation, "Too many SEQUENCE components")
	}
	result.Set("data-value", data)
	return result, nil
}

// externalContent is the inverse of decodeExternal. The data value picks the
// encoding alternative: a RawValue is single-ASN1-type, a BitString is
// arbitrary and bytes are octet-aligned.
func externalContent(m *asn1go.OrderedMap) ([]byte, error) {
	e := asn1binary.NewEncoder()

	idValue, ok := m.Get("identification")
	if !ok {
		return nil, asn1error.New(asn1error.SchemaViolation, "Missing SEQUENCE component identification")
	}
	id, ok := asn1go.AsChoice(idValue)
	if !ok {
		return nil, asn1error.New(asn1error.ValueShape, "Unknown type %s provided for CHOICE", asn1go.TypeName(idValue))
	}
	var direct, indirect any
	switch id.Identifier {
	case "syntax":
		direct = id.Value
	case "presentation-context-id":
		indirect = id.Value
	case "context-negotiation":
		negotiation, ok := asn1go.AsMap(id.Value)
		if !ok {
			return nil, asn1error.New(asn1error.ValueShape, "Unknown type %s provided for SEQUENCE", asn1go.TypeName(id.Value))
		}
		direct, _ = negotiation.Get("transfer-syntax")
		indirect, _ = negotiation.Get("presentation-context-id")
		if direct == nil || indirect == nil {
			return nil, asn1error.New(asn1error.SchemaViolation, "Missing SEQUENCE component context-negotiation")
		}
	default:
		return nil, errExternalIdentification()
	}
	if direct != nil {
		if err := encodeElement(e, &asn1schema.ObjectIdentifier{}, direct); err != nil {
			return nil, err
		}
	}
	if indirect != nil {
		if err := encodeElement(e, &asn1schema.Integer{}, indirect); err != nil {
			return nil, err
		}
	}
	if descriptor, ok := m.Get("data-value-descriptor"); ok {
		if err := encodeElement(e, asn1schema.NewString(asn1core.ObjectDescriptor), descriptor); err != nil {
			return nil, err
		}
	}

	data, ok := m.Get("data-value")
	if !ok {
		return nil, asn1error.New(asn1error.SchemaViolation, "Missing SEQUENCE component data-value")
	}
	if raw, ok := asn1go.AsRawValue(data); ok {
		e.WriteConstructed(ctx(0), func(child *asn1binary.Encoder) error {
			return child.WriteRaw(raw.Bytes)
		})
	} else if bits, ok := data.(asn1go.BitString); ok {
		e.WriteElement(ctx(2), asn1binary.BitStringContent(bits))
	} else if octets, ok := data.([]byte); ok {
		e.WriteElement(ctx(1), octets)
	} else {
		return nil, asn1error.New(asn1error.ValueShape, "Unknown type %s provided for EXTERNAL", asn1go.TypeName(data))
	}
	return e.Bytes()
}
