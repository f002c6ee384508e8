package asn1codec

import (
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

func TestExternal(t *testing.T) {
	element, err := asn1binary.NewDecoder(fromHex(t, "02 01 07")).ReadElement()
	if err != nil {
		t.Fatal(err)
	}
	bits, _ := asn1go.NewBitString("1")
	tests := []struct {
		name string
		v    *asn1go.OrderedMap
		hex  string
	}{
		{
			"syntax with octets",
			asn1go.NewOrderedMap().
				Set("identification", asn1go.Choice{Identifier: "syntax", Value: asn1go.OID{1, 2, 3}}).
				Set("data-value", []byte{1}),
			"28 09 06 02 2a 03 81 01 01",
		},
		{
			"context id with bits and descriptor",
			asn1go.NewOrderedMap().
				Set("identification", asn1go.Choice{Identifier: "presentation-context-id", Value: int64(5)}).
				Set("data-value-descriptor", "A").
				Set("data-value", bits),
			"28 0a 02 01 05 07 01 41 82 02 07 80",
		},
		{
			"negotiation with single value",
			asn1go.NewOrderedMap().
				Set("identification", asn1go.Choice{Identifier: "context-negotiation", Value: asn1go.NewOrderedMap().
					Set("presentation-context-id", int64(5)).
					Set("transfer-syntax", asn1go.OID{1, 2, 3})}).
				Set("data-value", element),
			"28 0c 06 02 2a 03 02 01 05 a0 03 02 01 07",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := mustEncode(t, &asn1schema.External{}, test.v); got != test.hex {
				t.Errorf("got %s, want %s", got, test.hex)
			}
			back := mustDecode(t, &asn1schema.External{}, test.hex)
			if !asn1go.Equal(back, test.v) {
				t.Errorf("got %v, want %v", back, test.v)
			}
		})
	}
}

func TestExternalUnsupported(t *testing.T) {
	fixed := asn1go.NewOrderedMap().
		Set("identification", asn1go.Choice{Identifier: "fixed", Value: asn1go.Null{}}).
		Set("data-value", []byte{1})
	_, err := EncodeValue(&asn1schema.External{}, fixed)
	expectError(t, err, "Unsupported identification for EXTERNAL type")

	_, err = DecodeValue(fromHex(t, "28 03 81 01 01"), &asn1schema.External{})
	expectError(t, err, "Unsupported identification for EXTERNAL type")

	_, err = DecodeValue(fromHex(t, "28 04 06 02 2a 03"), &asn1schema.External{})
	expectError(t, err, "Required SEQUENCE component encoding missing")
}
