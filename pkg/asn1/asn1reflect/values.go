package asn1reflect

import (
	"reflect"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// valueReflectHandler passes through Go types that already are value shapes,
// such as time.Time or asn1go.OID. convert accepts the other spellings the
// asn1go accessors allow.
type valueReflectHandler struct {
	convert func(v any) (any, bool)
}

func (h *valueReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return reflectedValue.Interface(), nil
}

func (h *valueReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	converted, ok := h.convert(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	value := reflect.ValueOf(converted)
	if !value.Type().AssignableTo(reflectedValue.Type()) {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.Set(value)
	return nil
}

func registerValue[T any](convert func(v any) (T, bool)) {
	handlerTypeCache[reflect.TypeFor[T]()] = &valueReflectHandler{
		convert: func(v any) (any, bool) {
			return convert(v)
		},
	}
}

func registerValueTypes() {
	registerValue(asn1go.AsTime)
	registerValue(asn1go.AsBitString)
	registerValue(asn1go.AsOID)
	registerValue(asn1go.AsRelativeOID)
	registerValue(asn1go.AsRawValue)
	registerValue(asn1go.AsMap)
	registerValue(func(v any) (asn1go.Null, bool) {
		return asn1go.Null{}, asn1go.IsNull(v)
	})
	handlerTypeCache[reflect.TypeFor[asn1go.Choice]()] = &choiceReflectHandler{}
}

// choiceReflectHandler normalizes the chosen value as well, so it may be any
// Go value Normalize understands.
type choiceReflectHandler struct {
}

func (h *choiceReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	c := reflectedValue.Interface().(asn1go.Choice)
	v, err := Normalize(c.Value)
	if err != nil {
		return nil, err
	}
	return asn1go.Choice{Identifier: c.Identifier, Value: v}, nil
}

func (h *choiceReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	c, ok := asn1go.AsChoice(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.Set(reflect.ValueOf(c))
	return nil
}
