package asn1core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

// Universal class tag numbers (X.680 8.4).
const (
	TagBoolean          uint32 = 0x01
	TagInteger          uint32 = 0x02
	TagBitString        uint32 = 0x03
	TagOctetString      uint32 = 0x04
	TagNull             uint32 = 0x05
	TagOID              uint32 = 0x06
	TagObjectDescriptor uint32 = 0x07
	TagExternal         uint32 = 0x08
	TagReal             uint32 = 0x09
	TagEnumerated       uint32 = 0x0A
	TagEmbeddedPDV      uint32 = 0x0B
	TagUTF8String       uint32 = 0x0C
	TagRelativeOID      uint32 = 0x0D
	TagSequence         uint32 = 0x10
	TagSet              uint32 = 0x11
	TagNumericString    uint32 = 0x12
	TagPrintableString  uint32 = 0x13
	TagT61String        uint32 = 0x14
	TagVideotexString   uint32 = 0x15
	TagIA5String        uint32 = 0x16
	TagUTCTime          uint32 = 0x17
	TagGeneralizedTime  uint32 = 0x18
	TagGraphicString    uint32 = 0x19
	TagVisibleString    uint32 = 0x1A
	TagGeneralString    uint32 = 0x1B
	TagUniversalString  uint32 = 0x1C
	TagBMPString        uint32 = 0x1E
)

var tagMap mapping[uint32]

func init() {
	tagMap.Add("BOOLEAN", TagBoolean)
	tagMap.Add("INTEGER", TagInteger)
	tagMap.Add("BIT STRING", TagBitString)
	tagMap.Add("OCTET STRING", TagOctetString)
	tagMap.Add("NULL", TagNull)
	tagMap.Add("OBJECT IDENTIFIER", TagOID)
	tagMap.Add("ObjectDescriptor", TagObjectDescriptor)
	tagMap.Add("EXTERNAL", TagExternal)
	tagMap.Add("REAL", TagReal)
	tagMap.Add("ENUMERATED", TagEnumerated)
	tagMap.Add("EMBEDDED PDV", TagEmbeddedPDV)
	tagMap.Add("UTF8String", TagUTF8String)
	tagMap.Add("RELATIVE-OID", TagRelativeOID)
	tagMap.Add("SEQUENCE", TagSequence)
	tagMap.Add("SET", TagSet)
	tagMap.Add("NumericString", TagNumericString)
	tagMap.Add("PrintableString", TagPrintableString)
	tagMap.Add("T61String", TagT61String)
	tagMap.Add("VideotexString", TagVideotexString)
	tagMap.Add("IA5String", TagIA5String)
	tagMap.Add("UTCTime", TagUTCTime)
	tagMap.Add("GeneralizedTime", TagGeneralizedTime)
	tagMap.Add("GraphicString", TagGraphicString)
	tagMap.Add("VisibleString", TagVisibleString)
	tagMap.Add("GeneralString", TagGeneralString)
	tagMap.Add("UniversalString", TagUniversalString)
	tagMap.Add("BMPString", TagBMPString)

	tagMap.AddAlias("OBJECT IDENTIFIER", "OID")
	tagMap.AddAlias("T61String", "TeletexString")
	tagMap.AddAlias("VisibleString", "ISO646String")
}

// UniversalName returns the ASN.1 name of a universal tag number, or "" if unknown.
func UniversalName(number uint32) string {
	name, err := tagMap.Name(number)
	if err != nil {
		return ""
	}
	return name
}

func LookupUniversal(name string) (uint32, error) {
	return tagMap.Value(name)
}

// Tag identifies a TLV. The constructed bit is carried along but is not part
// of a tag's identity.
type Tag struct {
	Class       Class
	Number      uint32
	Constructed bool
}

func NewUniversal(number uint32) Tag {
	return Tag{Class: ClassUniversal, Number: number}
}

func New(class Class, number uint32) Tag {
	return Tag{Class: class, Number: number}
}

func (t Tag) WithConstructed(constructed bool) Tag {
	t.Constructed = constructed
	return t
}

func (t Tag) Matches(class Class, number uint32) bool {
	return t.Class == class && t.Number == number
}

func (t Tag) Equal(other Tag) bool {
	return t.Matches(other.Class, other.Number)
}

// Key drops the constructed bit so tags can be used as map keys.
func (t Tag) Key() Tag {
	return Tag{Class: t.Class, Number: t.Number}
}

func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return fmt.Sprintf("[%d]", t.Number)
	}
	return fmt.Sprintf("[%s %d]", t.Class, t.Number)
}

// ParseTag reads the bracketed tag notation used in ASN.1 sources, eg "[0]",
// "[APPLICATION 3]" or "[PRIVATE 12]".
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return Tag{}, asn1error.NewErrorf("invalid tag %q", s)
	}
	fields := strings.Fields(s[1 : len(s)-1])
	class := ClassContextSpecific
	switch len(fields) {
	case 1:
	case 2:
		var err error
		class, err = ParseClass(fields[0])
		if err != nil {
			return Tag{}, asn1error.NewErrorf("invalid tag %q", s).WithCause(err)
		}
		fields = fields[1:]
	default:
		return Tag{}, asn1error.NewErrorf("invalid tag %q", s)
	}
	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Tag{}, asn1error.NewErrorf("invalid tag number in %q", s)
	}
	return New(class, uint32(n)), nil
}
