package asn1reflect

import (
	"bytes"
	"reflect"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// sliceReflectHandler maps slices and arrays to SEQUENCE OF / SET OF lists.
type sliceReflectHandler struct {
}

func (srh *sliceReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	if reflectedValue.Kind() == reflect.Slice && reflectedValue.IsNil() {
		return []any{}, nil
	}
	n := reflectedValue.Len()
	list := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := normalizeValue(reflectedValue.Index(i))
		if err != nil {
			return nil, asn1error.NewErrorf("element %d", i).WithCause(err).WithType(asn1error.TypeOf(err))
		}
		list[i] = v
	}
	return list, nil
}

func (srh *sliceReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	list, ok := asn1go.AsList(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	rType := reflectedValue.Type()
	target := reflectedValue
	switch reflectedValue.Kind() {
	case reflect.Slice:
		target = reflect.MakeSlice(rType, len(list), len(list))
	case reflect.Array:
		if len(list) != reflectedValue.Len() {
			return asn1error.New(asn1error.ValueShape, "expected %d elements for %s, got %d", reflectedValue.Len(), rType, len(list))
		}
	}
	for i, item := range list {
		if err := assignValue(target.Index(i), item); err != nil {
			return asn1error.NewErrorf("element %d", i).WithCause(err).WithType(asn1error.TypeOf(err))
		}
	}
	if reflectedValue.Kind() == reflect.Slice {
		reflectedValue.Set(target)
	}
	return nil
}

// byteSliceReflectHandler maps []byte to OCTET STRING.
type byteSliceReflectHandler struct {
}

func (s *byteSliceReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return bytes.Clone(reflectedValue.Bytes()), nil
}

func (s *byteSliceReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	b, ok := asn1go.AsBytes(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.SetBytes(bytes.Clone(b))
	return nil
}

func newSliceReflectHandler(rType reflect.Type) reflectHandler {
	if rType.Kind() == reflect.Slice && rType.Elem().Kind() == reflect.Uint8 {
		return &byteSliceReflectHandler{}
	}
	return &sliceReflectHandler{}
}
