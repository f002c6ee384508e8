package asn1codec

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

// JSON projection
//
//	OCTET STRING        hex string
//	BIT STRING          string of '0' and '1'
//	OBJECT IDENTIFIER   dotted string
//	REAL                number, or "INF", "-INF", "NaN", "-0"
//	UTCTime etc         RFC 3339 string
//	CHOICE              object with a single key; "" holds an unknown element as hex
//	SEQUENCE, SET       object in component order
//
// Everything else maps onto the obvious JSON type.

func errJSONShape(v any, t asn1schema.Type) error {
	return asn1error.New(asn1error.ValueShape, "Unknown type %s provided for %s", asn1go.TypeName(v), t.TypeName())
}

// ToJSON converts a decoded value of type t into a tree that encoding/json
// can marshal.
func ToJSON(t asn1schema.Type, v any) (any, error) {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return ToJSON(resolved, v)
	case *asn1schema.Optional:
		return ToJSON(t.Inner(), v)
	case *asn1schema.Default:
		return ToJSON(t.Inner(), v)
	case *asn1schema.Tagged:
		return ToJSON(t.Inner(), v)
	case *asn1schema.Sequence:
		return componentsToJSON(t.Components(), v, t)
	case *asn1schema.Set:
		return componentsToJSON(t.Components(), v, t)
	case *asn1schema.EmbeddedPDV:
		return ToJSON(embeddedPDV, v)
	case *asn1schema.External:
		return externalToJSON(v, t)
	case *asn1schema.SequenceOf:
		return listToJSON(t.Element(), v, t)
	case *asn1schema.SetOf:
		return listToJSON(t.Element(), v, t)
	case *asn1schema.Choice:
		c, ok := asn1go.AsChoice(v)
		if !ok {
			return nil, errJSONShape(v, t)
		}
		out := asn1go.NewOrderedMap()
		if alt, ok := t.Alternative(c.Identifier); ok {
			j, err := ToJSON(alt.Type, c.Value)
			if err != nil {
				return nil, err
			}
			return out.Set(c.Identifier, j), nil
		}
		return out.Set(c.Identifier, shapeToJSON(c.Value)), nil
	}
	if err := asn1schema.CheckValue(t, v); err != nil {
		return nil, err
	}
	return shapeToJSON(v), nil
}

func componentsToJSON(components []asn1schema.Component, v any, t asn1schema.Type) (any, error) {
	m, ok := asn1go.AsMap(v)
	if !ok {
		return nil, errJSONShape(v, t)
	}
	out := asn1go.NewOrderedMap()
	for _, c := range components {
		member, ok := m.Get(c.Name)
		if !ok {
			continue
		}
		j, err := ToJSON(c.Type, member)
		if err != nil {
			return nil, err
		}
		out.Set(c.Name, j)
	}
	return out, nil
}

func listToJSON(element asn1schema.Type, v any, t asn1schema.Type) (any, error) {
	list, ok := asn1go.AsList(v)
	if !ok {
		return nil, errJSONShape(v, t)
	}
	out := make([]any, len(list))
	for i, item := range list {
		j, err := ToJSON(element, item)
		if err != nil {
			return nil, err
		}
		out[i] = j
	}
	return out, nil
}

// shapeToJSON converts by Go type alone. It serves the leaf types and the
// values inside EXTERNAL, whose members have no schema.
func shapeToJSON(v any) any {
	switch v := v.(type) {
	case []byte:
		return hex.EncodeToString(v)
	case asn1go.BitString:
		return v.String()
	case asn1go.OID:
		return v.String()
	case asn1go.RelativeOID:
		return v.String()
	case asn1go.Null:
		return nil
	case float64:
		switch {
		case math.IsNaN(v):
			return "NaN"
		case math.IsInf(v, 1):
			return "INF"
		case math.IsInf(v, -1):
			return "-INF"
		case v == 0 && math.Signbit(v):
			return "-0"
		}
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case asn1go.RawValue:
		return hex.EncodeToString(v.Bytes)
	case asn1go.Choice:
		return asn1go.NewOrderedMap().Set(v.Identifier, shapeToJSON(v.Value))
	case *asn1go.OrderedMap:
		out := asn1go.NewOrderedMap()
		v.Range(func(key string, value any) bool {
			out.Set(key, shapeToJSON(value))
			return true
		})
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = shapeToJSON(item)
		}
		return out
	}
	return v
}

// FromJSON converts a tree produced by encoding/json (ideally decoded with
// UseNumber) into a value of type t, ready for EncodeValue.
func FromJSON(t asn1schema.Type, j any) (any, error) {
	switch t := t.(type) {
	case *asn1schema.Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return FromJSON(resolved, j)
	case *asn1schema.Optional:
		return FromJSON(t.Inner(), j)
	case *asn1schema.Default:
		return FromJSON(t.Inner(), j)
	case *asn1schema.Tagged:
		return FromJSON(t.Inner(), j)
	case *asn1schema.Boolean:
		if b, ok := j.(bool); ok {
			return b, nil
		}
	case *asn1schema.Integer:
		if n, ok := jsonInt(j); ok {
			return n, nil
		}
	case *asn1schema.Enumerated:
		if s, ok := j.(string); ok {
			return s, nil
		}
		if n, ok := jsonInt(j); ok {
			return n, nil
		}
	case *asn1schema.BitString:
		if s, ok := j.(string); ok {
			return asn1go.NewBitString(s)
		}
	case *asn1schema.OctetString:
		if s, ok := j.(string); ok {
			return hexBytes(s)
		}
	case *asn1schema.Null:
		if j == nil {
			return asn1go.Null{}, nil
		}
	case *asn1schema.ObjectIdentifier:
		if s, ok := j.(string); ok {
			return asn1go.ParseOID(s)
		}
	case *asn1schema.RelativeOID:
		if s, ok := j.(string); ok {
			return asn1go.ParseRelativeOID(s)
		}
	case *asn1schema.Real:
		if f, ok := jsonFloat(j); ok {
			return f, nil
		}
	case *asn1schema.String:
		if s, ok := j.(string); ok {
			return s, nil
		}
	case *asn1schema.UTCTime, *asn1schema.GeneralizedTime:
		if s, ok := j.(string); ok {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, asn1error.New(asn1error.ValueShape, "Invalid %s value %q", t.TypeName(), s)
			}
			return ts, nil
		}
	case *asn1schema.Sequence:
		return componentsFromJSON(t.Components(), t.Extensible(), j, t)
	case *asn1schema.Set:
		return componentsFromJSON(t.Components(), t.Extensible(), j, t)
	case *asn1schema.EmbeddedPDV:
		return FromJSON(embeddedPDV, j)
	case *asn1schema.External:
		return externalFromJSON(j, t)
	case *asn1schema.SequenceOf:
		return listFromJSON(t.Element(), j, t)
	case *asn1schema.SetOf:
		return listFromJSON(t.Element(), j, t)
	case *asn1schema.Choice:
		return choiceFromJSON(t, j)
	}
	return nil, errJSONShape(j, t)
}

func jsonInt(j any) (int64, bool) {
	switch n := j.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<63 {
			return int64(n), true
		}
		return 0, false
	}
	return asn1go.AsInt64(j)
}

func jsonFloat(j any) (float64, bool) {
	switch n := j.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		switch n {
		case "INF":
			return math.Inf(1), true
		case "-INF":
			return math.Inf(-1), true
		case "NaN":
			return math.NaN(), true
		case "-0":
			return math.Copysign(0, -1), true
		}
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return asn1go.AsFloat64(j)
}

func hexBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, asn1error.New(asn1error.ValueShape, "Invalid hex data %q", s)
	}
	return b, nil
}

func jsonObject(j any) (*asn1go.OrderedMap, bool) {
	if m, ok := j.(*asn1go.OrderedMap); ok {
		return m, true
	}
	m, ok := j.(map[string]any)
	if !ok {
		return nil, false
	}
	return asn1go.AsMap(m)
}

func componentsFromJSON(components []asn1schema.Component, extensible bool, j any, t asn1schema.Type) (any, error) {
	in, ok := jsonObject(j)
	if !ok {
		return nil, errJSONShape(j, t)
	}
	known := make(map[string]bool, len(components))
	out := asn1go.NewOrderedMap()
	for _, c := range components {
		known[c.Name] = true
		member, ok := in.Get(c.Name)
		if !ok {
			continue
		}
		v, err := FromJSON(c.Type, member)
		if err != nil {
			return nil, err
		}
		out.Set(c.Name, v)
	}
	if !extensible {
		for _, key := range in.Keys() {
			if !known[key] {
				return nil, asn1error.New(asn1error.SchemaViolation, "Unknown %s component %s", t.TypeName(), key)
			}
		}
	}
	return out, nil
}

func listFromJSON(element asn1schema.Type, j any, t asn1schema.Type) (any, error) {
	in, ok := j.([]any)
	if !ok {
		return nil, errJSONShape(j, t)
	}
	out := make([]any, len(in))
	for i, item := range in {
		v, err := FromJSON(element, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func choiceFromJSON(t *asn1schema.Choice, j any) (any, error) {
	in, ok := jsonObject(j)
	if !ok || in.Len() != 1 {
		return nil, errJSONShape(j, t)
	}
	name := in.Keys()[0]
	member, _ := in.Get(name)
	if alt, ok := t.Alternative(name); ok {
		v, err := FromJSON(alt.Type, member)
		if err != nil {
			return nil, err
		}
		return asn1go.Choice{Identifier: name, Value: v}, nil
	}
	if name == "" && t.Extensible() {
		raw, err := rawFromJSON(member)
		if err != nil {
			return nil, err
		}
		return asn1go.Choice{Value: raw}, nil
	}
	return nil, asn1error.New(asn1error.SchemaViolation, "Unknown CHOICE alternative %s", name)
}

// rawFromJSON reads back the hex form of an undecoded element.
func rawFromJSON(j any) (asn1go.RawValue, error) {
	s, _ := j.(string)
	b, err := hexBytes(s)
	if err != nil {
		return asn1go.RawValue{}, err
	}
	d := asn1binary.NewDecoder(b)
	raw, err := d.ReadElement()
	if err != nil {
		return asn1go.RawValue{}, err
	}
	if d.Remaining() > 0 {
		return asn1go.RawValue{}, asn1error.New(asn1error.MalformedLength, "Unexpected data after value")
	}
	return raw, nil
}

// externalFromJSON accepts the identification alternatives that EXTERNAL can
// carry. data-value is hex for octet-aligned data, or an object with a single
// "bits" or "element" key for the other encodings.
func externalFromJSON(j any, t asn1schema.Type) (any, error) {
	in, ok := jsonObject(j)
	if !ok {
		return nil, errJSONShape(j, t)
	}
	out := asn1go.NewOrderedMap()
	if id, ok := in.Get("identification"); ok {
		v, err := FromJSON(externalIdentification, id)
		if err != nil {
			return nil, err
		}
		out.Set("identification", v)
	}
	if descriptor, ok := in.Get("data-value-descriptor"); ok {
		out.Set("data-value-descriptor", descriptor)
	}
	if data, ok := in.Get("data-value"); ok {
		switch data := data.(type) {
		case string:
			b, err := hexBytes(data)
			if err != nil {
				return nil, err
			}
			out.Set("data-value", b)
		default:
			obj, ok := jsonObject(data)
			if !ok || obj.Len() != 1 {
				return nil, errJSONShape(data, t)
			}
			if bits, ok := obj.Get("bits"); ok {
				s, _ := bits.(string)
				bs, err := asn1go.NewBitString(s)
				if err != nil {
					return nil, err
				}
				out.Set("data-value", bs)
			} else if element, ok := obj.Get("element"); ok {
				raw, err := rawFromJSON(element)
				if err != nil {
					return nil, err
				}
				out.Set("data-value", raw)
			} else {
				return nil, errJSONShape(data, t)
			}
		}
	}
	return out, nil
}

func externalToJSON(v any, t asn1schema.Type) (any, error) {
	m, ok := asn1go.AsMap(v)
	if !ok {
		return nil, errJSONShape(v, t)
	}
	out := asn1go.NewOrderedMap()
	var err error
	m.Range(func(key string, value any) bool {
		if key != "data-value" {
			out.Set(key, shapeToJSON(value))
			return true
		}
		switch data := value.(type) {
		case asn1go.BitString:
			out.Set(key, asn1go.NewOrderedMap().Set("bits", data.String()))
		case asn1go.RawValue:
			out.Set(key, asn1go.NewOrderedMap().Set("element", hex.EncodeToString(data.Bytes)))
		case []byte:
			out.Set(key, hex.EncodeToString(data))
		default:
			err = errJSONShape(value, t)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// externalIdentification describes the identification alternatives that
// EXTERNAL supports, for JSON conversion only.
var externalIdentification = asn1schema.NewChoice(false,
	asn1schema.Component{Name: "syntax", Type: &asn1schema.ObjectIdentifier{}},
	asn1schema.Component{Name: "presentation-context-id", Type: &asn1schema.Integer{}},
	asn1schema.Component{Name: "context-negotiation", Type: asn1schema.NewSequence(false,
		asn1schema.Component{Name: "presentation-context-id", Type: &asn1schema.Integer{}},
		asn1schema.Component{Name: "transfer-syntax", Type: &asn1schema.ObjectIdentifier{}},
	)},
)
