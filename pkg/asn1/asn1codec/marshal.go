package asn1codec

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1reflect"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

// Marshal encodes an ordinary Go value, such as a struct with asn1 field
// tags, as type t.
func Marshal(t asn1schema.Type, goValue any) ([]byte, error) {
	v, err := asn1reflect.Normalize(goValue)
	if err != nil {
		return nil, err
	}
	return EncodeValue(t, v)
}

// Unmarshal decodes data as type t into the variable dst points to.
func Unmarshal(data []byte, t asn1schema.Type, dst any) error {
	v, err := DecodeValue(data, t)
	if err != nil {
		return err
	}
	return asn1reflect.Assign(dst, v)
}
