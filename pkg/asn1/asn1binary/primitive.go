package asn1binary

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

func errNotConstructed(typeName string) error {
	return asn1error.New(asn1error.WrongForm, "%s does not have constructed form", typeName)
}

func ParseBoolean(e asn1go.RawValue) (bool, error) {
	if e.Tag.Constructed {
		return false, errNotConstructed("BOOLEAN")
	}
	if len(e.Content) != 1 {
		return false, asn1error.New(asn1error.MalformedLength, "Invalid BOOLEAN data length")
	}
	return e.Content[0] != 0, nil
}

func BooleanContent(v bool) []byte {
	if v {
		return []byte{0xff}
	}
	return []byte{0x00}
}

// parseInt64 reads big-endian two's complement. Redundant leading octets are
// accepted.
func parseInt64(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, asn1error.New(asn1error.MalformedLength, "Invalid INTEGER data length")
	}
	if len(content) > 8 {
		return 0, asn1error.New(asn1error.Unsupported, "INTEGER greater than 64 bits not supported")
	}
	var n int64
	if content[0]&0x80 != 0 {
		n = -1
	}
	for _, b := range content {
		n = n<<8 | int64(b)
	}
	return n, nil
}

func ParseInteger(e asn1go.RawValue) (int64, error) {
	if e.Tag.Constructed {
		return 0, errNotConstructed("INTEGER")
	}
	return parseInt64(e.Content)
}

func ParseEnumerated(e asn1go.RawValue) (int64, error) {
	if e.Tag.Constructed {
		return 0, errNotConstructed("ENUMERATED")
	}
	return parseInt64(e.Content)
}

// IntegerContent returns the minimal two's complement encoding of n.
func IntegerContent(n int64) []byte {
	size := 1
	for v := n; v > 127 || v < -128; v >>= 8 {
		size++
	}
	b := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}

func ParseNull(e asn1go.RawValue) (asn1go.Null, error) {
	if e.Tag.Constructed {
		return asn1go.Null{}, errNotConstructed("NULL")
	}
	if len(e.Content) != 0 {
		return asn1go.Null{}, asn1error.New(asn1error.MalformedLength, "Invalid NULL data length")
	}
	return asn1go.Null{}, nil
}
