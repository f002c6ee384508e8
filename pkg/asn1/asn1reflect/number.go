package asn1reflect

import (
	"math"
	"reflect"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type integerReflectHandler struct {
}

func (h *integerReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return reflectedValue.Int(), nil
}

func (h *integerReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	n, ok := asn1go.AsInt64(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	if reflectedValue.OverflowInt(n) {
		return asn1error.New(asn1error.ValueShape, "value %d overflows %s", n, reflectedValue.Type())
	}
	reflectedValue.SetInt(n)
	return nil
}

type unsignedReflectHandler struct {
}

func (h *unsignedReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	n := reflectedValue.Uint()
	if n > math.MaxInt64 {
		return nil, asn1error.New(asn1error.Unsupported, "INTEGER greater than 64 bits not supported")
	}
	return int64(n), nil
}

func (h *unsignedReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	n, ok := asn1go.AsInt64(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	if n < 0 || reflectedValue.OverflowUint(uint64(n)) {
		return asn1error.New(asn1error.ValueShape, "value %d overflows %s", n, reflectedValue.Type())
	}
	reflectedValue.SetUint(uint64(n))
	return nil
}

type floatReflectHandler struct {
}

func (h *floatReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return reflectedValue.Float(), nil
}

func (h *floatReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	f, ok := asn1go.AsFloat64(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.SetFloat(f)
	return nil
}
