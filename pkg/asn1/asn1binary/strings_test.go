package asn1binary

import (
	"bytes"
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

func TestDecodeBitString(t *testing.T) {
	tests := []struct {
		hex, want string
	}{
		{"03 01 00", ""},
		{"03 02 07 80", "1"},
		{"03 02 00 a5", "10100101"},
		// padding bits are ignored
		{"03 02 04 df", "1101"},
		{"23 08 03 02 04 d0 03 02 04 d0", "11011101"},
		{"23 07 03 01 00 03 02 00 ff", "11111111"},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			got, err := NewDecoder(fromHex(t, test.hex)).DecodeBitString()
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
		})
	}
}

func TestDecodeBitStringErrors(t *testing.T) {
	tests := []struct {
		hex, want string
	}{
		{"03 00", "Invalid BIT STRING data length"},
		{"03 02 08 00", "Invalid BIT STRING unused bits"},
		{"03 01 03", "Invalid BIT STRING unused bits"},
		{"23 05 23 03 03 01 00", "Nested constructed BIT STRING not supported"},
		{"23 03 04 01 00", "Invalid BIT STRING segment"},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, test.hex)).DecodeBitString()
			expectError(t, err, test.want)
		})
	}
}

func TestEncodeBitString(t *testing.T) {
	tests := []struct {
		bits, want string
	}{
		{"", "03 01 00"},
		{"1", "03 02 07 80"},
		{"11011101", "03 02 00 dd"},
		{"101", "03 02 05 a0"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			bs, err := asn1go.NewBitString(test.bits)
			if err != nil {
				t.Fatal(err)
			}
			e := NewEncoder()
			e.EncodeBitString(bs)
			b, _ := e.Bytes()
			if got := toHex(b); got != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
		})
	}
}

func TestDecodeOctetString(t *testing.T) {
	tests := []struct {
		hex  string
		want []byte
	}{
		{"04 00", []byte{}},
		{"04 03 01 02 03", []byte{1, 2, 3}},
		{"24 08 04 02 01 02 04 02 03 04", []byte{1, 2, 3, 4}},
		{"24 00", []byte{}},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			got, err := NewDecoder(fromHex(t, test.hex)).DecodeOctetString()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, test.want) {
				t.Errorf("got %x, want %x", got, test.want)
			}
		})
	}
	_, err := NewDecoder(fromHex(t, "24 04 24 02 04 00")).DecodeOctetString()
	expectError(t, err, "Nested constructed OCTET STRING not supported")
}

func TestStrings(t *testing.T) {
	tests := []struct {
		kind asn1core.StringKind
		text string
		hex  string
	}{
		{asn1core.PrintableString, "Hi there", "13 08 48 69 20 74 68 65 72 65"},
		{asn1core.IA5String, "a@b", "16 03 61 40 62"},
		{asn1core.NumericString, "12 3", "12 04 31 32 20 33"},
		{asn1core.UTF8String, "é", "0c 02 c3 a9"},
		{asn1core.BMPString, "é", "1e 02 00 e9"},
		{asn1core.VisibleString, "~", "1a 01 7e"},
		{asn1core.GraphicString, "é", "19 01 e9"},
	}
	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			e := NewEncoder()
			e.EncodeString(test.kind, test.text)
			b, err := e.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if got := toHex(b); got != test.hex {
				t.Errorf("got %s, want %s", got, test.hex)
			}
			text, err := NewDecoder(b).DecodeString(test.kind)
			if err != nil {
				t.Fatal(err)
			}
			if text != test.text {
				t.Errorf("got %q, want %q", text, test.text)
			}
		})
	}
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		kind asn1core.StringKind
		hex  string
		want string
	}{
		{asn1core.PrintableString, "13 01 40", "Invalid PrintableString value"},
		{asn1core.NumericString, "12 01 41", "Invalid NumericString value"},
		{asn1core.IA5String, "16 01 80", "Invalid IA5String value"},
		{asn1core.UTF8String, "0c 01 ff", "Invalid UTF8String value"},
		{asn1core.BMPString, "1e 01 00", "Invalid BMPString data length"},
		{asn1core.BMPString, "1e 02 d8 00", "Invalid BMPString value"},
		{asn1core.PrintableString, "33 06 13 01 41 13 01 40", "Invalid PrintableString value"},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, test.hex)).DecodeString(test.kind)
			expectError(t, err, test.want)
		})
	}

	e := NewEncoder()
	expectError(t, e.EncodeString(asn1core.PrintableString, "a@b"), "Invalid PrintableString value")
	expectError(t, NewEncoder().EncodeString(asn1core.BMPString, "\U0001F600"), "Invalid BMPString value")
}

func TestConstructedUTF8SplitsCharacter(t *testing.T) {
	// the two octets of "é" arrive in different segments
	text, err := NewDecoder(fromHex(t, "2c 06 0c 01 c3 0c 01 a9")).DecodeString(asn1core.UTF8String)
	if err != nil {
		t.Fatal(err)
	}
	if text != "é" {
		t.Errorf("got %q, want %q", text, "é")
	}
}
