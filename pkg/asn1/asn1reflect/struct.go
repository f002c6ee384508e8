package asn1reflect

import (
	"reflect"
	"strings"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type fieldsHelper struct {
	fields []reflect.StructField
	names  []string
}

var fieldHelperCache map[reflect.Type]*fieldsHelper

func fieldHelperFor(rType reflect.Type) *fieldsHelper {
	lock.RLock()
	helper, ok := fieldHelperCache[rType]
	lock.RUnlock()
	if ok {
		return helper
	}
	helper = &fieldsHelper{}

	for _, field := range reflect.VisibleFields(rType) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("asn1"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		helper.fields = append(helper.fields, field)
		helper.names = append(helper.names, name)
	}

	lock.Lock()
	defer lock.Unlock()
	if fieldHelperCache == nil {
		fieldHelperCache = make(map[reflect.Type]*fieldsHelper)
	}
	fieldHelperCache[rType] = helper
	return helper
}

// structFieldHandler maps a struct to the components of a SEQUENCE or SET.
type structFieldHandler struct {
}

func (sfh *structFieldHandler) normalize(reflectedValue reflect.Value) (any, error) {
	helper := fieldHelperFor(reflectedValue.Type())
	m := asn1go.NewOrderedMap()
	for i, field := range helper.fields {
		fieldValue := reflectedValue.FieldByIndex(field.Index)
		if fieldValue.Kind() == reflect.Pointer && fieldValue.IsNil() {
			continue
		}
		v, err := normalizeValue(fieldValue)
		if err != nil {
			return nil, asn1error.NewErrorf("normalizing field %q", field.Name).WithCause(err).WithType(asn1error.TypeOf(err))
		}
		m.Set(helper.names[i], v)
	}
	return m, nil
}

func (sfh *structFieldHandler) assign(reflectedValue reflect.Value, v any) error {
	m, ok := asn1go.AsMap(v)
	if !ok {
		return errCannotAssign(v, reflectedValue.Type())
	}
	helper := fieldHelperFor(reflectedValue.Type())
	for i, field := range helper.fields {
		member, ok := m.Get(helper.names[i])
		if !ok {
			continue
		}
		if err := assignValue(reflectedValue.FieldByIndex(field.Index), member); err != nil {
			return asn1error.NewErrorf("assigning field %q", field.Name).WithCause(err).WithType(asn1error.TypeOf(err))
		}
	}
	return nil
}

func newStructFieldHandler(_ reflect.Type) reflectHandler {
	return &structFieldHandler{}
}
