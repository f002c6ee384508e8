package asn1reflect

import (
	"reflect"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type booleanReflectHandler struct {
}

func (b *booleanReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return reflectedValue.Bool(), nil
}

func (b *booleanReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	value, ok := asn1go.AsBool(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.SetBool(value)
	return nil
}
