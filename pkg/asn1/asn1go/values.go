package asn1go

import (
	"encoding/hex"
	"fmt"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
)

// Null is the value of an ASN.1 NULL.
type Null struct{}

func (Null) String() string {
	return "NULL"
}

// Choice is a decoded CHOICE: the name of the alternative and its value.
// An extensible CHOICE that met an unknown tag yields an empty Identifier and
// a RawValue.
type Choice struct {
	Identifier string
	Value      any
}

func (c Choice) String() string {
	return fmt.Sprintf("%s: %v", c.Identifier, c.Value)
}

// RawValue is an undecoded TLV.
type RawValue struct {
	Tag     asn1core.Tag
	Content []byte // the value octets
	Bytes   []byte // the complete encoding including identifier and length
}

func (r RawValue) String() string {
	return fmt.Sprintf("%s %s", r.Tag, hex.EncodeToString(r.Content))
}
