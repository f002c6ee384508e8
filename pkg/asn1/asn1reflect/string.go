package asn1reflect

import (
	"reflect"
)

// stringReflectHandler also serves ENUMERATED values, which decode to the
// item name.
type stringReflectHandler struct {
}

func (s *stringReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	return reflectedValue.String(), nil
}

func (s *stringReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	str, ok := v.(string)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.SetString(str)
	return nil
}
