package asn1reflect

import (
	"reflect"
	"slices"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type anyReflectHandler struct {
}

func (h *anyReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	if reflectedValue.IsNil() {
		return nil, nil
	}
	return normalizeValue(reflectedValue.Elem())
}

// assign stores v as is when the interface allows it.
func (h *anyReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	if v == nil {
		reflectedValue.SetZero()
		return nil
	}
	value := reflect.ValueOf(v)
	if !value.Type().AssignableTo(reflectedValue.Type()) {
		return errCannotAssign(v, reflectedValue.Type())
	}
	reflectedValue.Set(value)
	return nil
}

type pointerReflectHandler struct {
}

func (h *pointerReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	if reflectedValue.IsNil() {
		return nil, nil
	}
	return normalizeValue(reflectedValue.Elem())
}

func (h *pointerReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	if reflectedValue.IsNil() {
		reflectedValue.Set(reflect.New(reflectedValue.Type().Elem()))
	}
	return assignValue(reflectedValue.Elem(), v)
}

// stringMapReflectHandler turns map[string]T into components ordered by key.
type stringMapReflectHandler struct {
}

func (h *stringMapReflectHandler) normalize(reflectedValue reflect.Value) (any, error) {
	keys := make([]string, 0, reflectedValue.Len())
	for _, key := range reflectedValue.MapKeys() {
		keys = append(keys, key.String())
	}
	slices.Sort(keys)
	m := asn1go.NewOrderedMap()
	for _, key := range keys {
		member := reflectedValue.MapIndex(reflect.ValueOf(key).Convert(reflectedValue.Type().Key()))
		v, err := normalizeValue(member)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

func (h *stringMapReflectHandler) assign(reflectedValue reflect.Value, v any) error {
	m, ok := asn1go.AsMap(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	rType := reflectedValue.Type()
	out := reflect.MakeMapWithSize(rType, m.Len())
	var err error
	m.Range(func(key string, member any) bool {
		elem := reflect.New(rType.Elem()).Elem()
		if err = assignValue(elem, member); err != nil {
			return false
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(rType.Key()), elem)
		return true
	})
	if err != nil {
		return err
	}
	reflectedValue.Set(out)
	return nil
}
