// Package asn1reflect maps ordinary Go values onto the value shapes used by
// asn1codec. Normalize turns structs, slices and scalars into those shapes
// and Assign writes decoded values back into Go variables.
//
// Struct fields are matched to components by the asn1 struct tag, eg
// `asn1:"request-id"`, falling back to the field name. A tag of "-" skips
// the field. Nil pointer fields are left out, which is how OPTIONAL
// components are expressed.
package asn1reflect

import (
	"reflect"
	"sync"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type reflectHandler interface {
	normalize(reflectedValue reflect.Value) (any, error)
	assign(reflectedValue reflect.Value, v any) error
}

var lock sync.RWMutex
var handlerTypeCache map[reflect.Type]reflectHandler
var mapReflectHandler [reflect.UnsafePointer + 1]reflectHandler

func init() {
	mapReflectHandler[reflect.Bool] = &booleanReflectHandler{}
	for _, kind := range []reflect.Kind{reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64} {
		mapReflectHandler[kind] = &integerReflectHandler{}
	}
	for _, kind := range []reflect.Kind{reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64} {
		mapReflectHandler[kind] = &unsignedReflectHandler{}
	}
	mapReflectHandler[reflect.Float32] = &floatReflectHandler{}
	mapReflectHandler[reflect.Float64] = &floatReflectHandler{}
	mapReflectHandler[reflect.String] = &stringReflectHandler{}
	mapReflectHandler[reflect.Interface] = &anyReflectHandler{}
	mapReflectHandler[reflect.Pointer] = &pointerReflectHandler{}

	handlerTypeCache = make(map[reflect.Type]reflectHandler)
	registerValueTypes()
}

func errCannotAssign(v any, rType reflect.Type) error {
	return asn1error.New(asn1error.ValueShape, "cannot assign %s to %s", asn1go.TypeName(v), rType)
}

func getHandlerFor(rType reflect.Type) (reflectHandler, error) {
	lock.RLock()
	handler, ok := handlerTypeCache[rType]
	lock.RUnlock()
	if ok {
		return handler, nil
	}

	kind := rType.Kind()
	if kind <= reflect.Invalid || kind > reflect.UnsafePointer {
		return nil, asn1error.New(asn1error.Unsupported, "unsupported %s", kind)
	}
	handler = mapReflectHandler[kind]
	if handler == nil {
		switch kind {
		case reflect.Struct:
			handler = newStructFieldHandler(rType)
		case reflect.Slice, reflect.Array:
			handler = newSliceReflectHandler(rType)
		case reflect.Map:
			if rType.Key().Kind() != reflect.String {
				return nil, asn1error.New(asn1error.Unsupported, "unsupported map key type %s", rType.Key())
			}
			handler = &stringMapReflectHandler{}
		default:
			return nil, asn1error.New(asn1error.Unsupported, "unsupported type %s", rType)
		}
	}

	lock.Lock()
	defer lock.Unlock()
	handlerTypeCache[rType] = handler
	return handler, nil
}

// Normalize converts a Go value into the shapes asn1codec encodes.
func Normalize(goValue any) (any, error) {
	if goValue == nil {
		return nil, nil
	}
	return normalizeValue(reflect.ValueOf(goValue))
}

func normalizeValue(reflectedValue reflect.Value) (any, error) {
	handler, err := getHandlerFor(reflectedValue.Type())
	if err != nil {
		return nil, err
	}
	return handler.normalize(reflectedValue)
}

// Assign stores a decoded value into the variable dst points to.
func Assign(dst any, v any) error {
	reflectedValue := reflect.ValueOf(dst)
	if reflectedValue.Kind() != reflect.Pointer || reflectedValue.IsNil() {
		return asn1error.New(asn1error.ValueShape, "cannot assign into a non-pointer %T", dst)
	}
	return assignValue(reflectedValue.Elem(), v)
}

func assignValue(reflectedValue reflect.Value, v any) error {
	if !reflectedValue.CanSet() {
		return asn1error.New(asn1error.ValueShape, "cannot assign into a non-settable value - %s", reflectedValue.Type())
	}
	handler, err := getHandlerFor(reflectedValue.Type())
	if err != nil {
		return err
	}
	return handler.assign(reflectedValue, v)
}
