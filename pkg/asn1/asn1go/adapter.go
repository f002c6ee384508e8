package asn1go

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"
)

// The As* accessors are the only code that knows which Go values stand in
// for which ASN.1 values. Each reports false when v has the wrong shape.

func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func AsBytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	}
	return nil, false
}

func AsBitString(v any) (BitString, bool) {
	switch b := v.(type) {
	case BitString:
		return b, b.valid()
	case *BitString:
		if b != nil {
			return *b, b.valid()
		}
	case string:
		bs, err := NewBitString(b)
		return bs, err == nil
	}
	return BitString{}, false
}

func AsString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func AsOID(v any) (OID, bool) {
	switch o := v.(type) {
	case OID:
		return o, true
	case []uint32:
		return OID(o), true
	case string:
		oid, err := ParseOID(o)
		return oid, err == nil
	}
	return nil, false
}

func AsRelativeOID(v any) (RelativeOID, bool) {
	switch o := v.(type) {
	case RelativeOID:
		return o, true
	case []uint32:
		return RelativeOID(o), true
	case string:
		oid, err := ParseRelativeOID(o)
		return oid, err == nil
	}
	return nil, false
}

func IsNull(v any) bool {
	switch v.(type) {
	case nil, Null, *Null:
		return true
	}
	return false
}

// AsMap accepts an *OrderedMap or a plain map; plain maps are ordered by key.
func AsMap(v any) (*OrderedMap, bool) {
	switch m := v.(type) {
	case *OrderedMap:
		return m, m != nil
	case OrderedMap:
		return &m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		om := NewOrderedMap()
		for _, k := range keys {
			om.Set(k, m[k])
		}
		return om, true
	}
	return nil, false
}

func AsList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func AsChoice(v any) (Choice, bool) {
	switch c := v.(type) {
	case Choice:
		return c, true
	case *Choice:
		if c != nil {
			return *c, true
		}
	}
	return Choice{}, false
}

func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func AsRawValue(v any) (RawValue, bool) {
	switch r := v.(type) {
	case RawValue:
		return r, true
	case *RawValue:
		if r != nil {
			return *r, true
		}
	}
	return RawValue{}, false
}

// TypeName describes the shape of v for error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "double"
	case []byte:
		return "bytes"
	case string:
		return "string"
	case BitString, *BitString:
		return "bit string"
	case Null, *Null:
		return "null"
	case OID:
		return "object identifier"
	case RelativeOID:
		return "relative object identifier"
	case *OrderedMap, OrderedMap, map[string]any:
		return "map"
	case []any:
		return "list"
	case Choice, *Choice:
		return "choice"
	case time.Time, *time.Time:
		return "timestamp"
	case RawValue, *RawValue:
		return "raw value"
	}
	return fmt.Sprintf("%T", v)
}

// Equal compares two values structurally. Integers compare across widths,
// NaN equals NaN and -0 differs from +0.
func Equal(a, b any) bool {
	if ai, ok := AsInt64(a); ok {
		bi, ok := AsInt64(b)
		return ok && ai == bi
	}
	switch av := a.(type) {
	case float64, float32:
		af, _ := AsFloat64(av)
		bf, ok := AsFloat64(b)
		if !ok {
			return false
		}
		if math.IsNaN(af) || math.IsNaN(bf) {
			return math.IsNaN(af) && math.IsNaN(bf)
		}
		return math.Float64bits(af) == math.Float64bits(bf)
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case BitString:
		bv, ok := AsBitString(b)
		return ok && av.Equal(bv)
	case OID:
		bv, ok := b.(OID)
		return ok && av.Equal(bv)
	case RelativeOID:
		bv, ok := b.(RelativeOID)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case Choice:
		bv, ok := AsChoice(b)
		return ok && av.Identifier == bv.Identifier && Equal(av.Value, bv.Value)
	case RawValue:
		bv, ok := AsRawValue(b)
		return ok && bytes.Equal(av.Bytes, bv.Bytes)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *OrderedMap, map[string]any:
		am, _ := AsMap(av)
		bm, ok := AsMap(b)
		if !ok || am.Len() != bm.Len() {
			return false
		}
		equal := true
		am.Range(func(key string, value any) bool {
			other, ok := bm.Get(key)
			equal = ok && Equal(value, other)
			return equal
		})
		return equal
	}
	if IsNull(a) {
		return IsNull(b)
	}
	return reflect.DeepEqual(a, b)
}
