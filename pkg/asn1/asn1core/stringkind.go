package asn1core

// StringKind selects one of the restricted character string types.
type StringKind uint8

const (
	NumericString StringKind = iota + 1
	PrintableString
	IA5String
	VisibleString
	GraphicString
	GeneralString
	UTF8String
	BMPString
	ObjectDescriptor
)

var stringKindTags = map[StringKind]uint32{
	NumericString:    TagNumericString,
	PrintableString:  TagPrintableString,
	IA5String:        TagIA5String,
	VisibleString:    TagVisibleString,
	GraphicString:    TagGraphicString,
	GeneralString:    TagGeneralString,
	UTF8String:       TagUTF8String,
	BMPString:        TagBMPString,
	ObjectDescriptor: TagObjectDescriptor,
}

func (k StringKind) Number() uint32 {
	return stringKindTags[k]
}

func (k StringKind) String() string {
	if n, ok := stringKindTags[k]; ok {
		return UniversalName(n)
	}
	return "StringKind(?)"
}

// StringKindFor maps a universal tag number back to its string kind.
func StringKindFor(number uint32) (StringKind, bool) {
	for k, n := range stringKindTags {
		if n == number {
			return k, true
		}
	}
	return 0, false
}
