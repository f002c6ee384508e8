package asn1binary

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// segments returns the primitive children of a constructed string. Each child
// must carry either the universal tag of the string type or the same tag as
// its parent, and may not itself be constructed.
func segments(e asn1go.RawValue, universal uint32, typeName string) ([]asn1go.RawValue, error) {
	children, err := ParseElements(e.Content)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Tag.Constructed {
			return nil, asn1error.New(asn1error.WrongForm, "Nested constructed %s not supported", typeName)
		}
		if !child.Tag.Matches(asn1core.ClassUniversal, universal) && !child.Tag.Equal(e.Tag) {
			return nil, asn1error.New(asn1error.InvalidContent, "Invalid %s segment", typeName)
		}
	}
	return children, nil
}

func parseBitStringContent(content []byte) (asn1go.BitString, error) {
	if len(content) == 0 {
		return asn1go.BitString{}, asn1error.New(asn1error.MalformedLength, "Invalid BIT STRING data length")
	}
	unused := int(content[0])
	if unused > 7 || (len(content) == 1 && unused != 0) {
		return asn1go.BitString{}, asn1error.New(asn1error.InvalidContent, "Invalid BIT STRING unused bits")
	}
	data := append([]byte(nil), content[1:]...)
	if len(data) > 0 {
		data[len(data)-1] &= 0xff << uint(unused)
	}
	return asn1go.BitString{Bytes: data, BitLength: len(data)*8 - unused}, nil
}

// ParseBitString decodes a BIT STRING. In the constructed form the bits of
// every segment are concatenated, so padding only survives from the last one.
func ParseBitString(e asn1go.RawValue) (asn1go.BitString, error) {
	if !e.Tag.Constructed {
		return parseBitStringContent(e.Content)
	}
	parts, err := segments(e, asn1core.TagBitString, "BIT STRING")
	if err != nil {
		return asn1go.BitString{}, err
	}
	var result asn1go.BitString
	for _, part := range parts {
		bits, err := parseBitStringContent(part.Content)
		if err != nil {
			return asn1go.BitString{}, err
		}
		result.Append(bits)
	}
	return result, nil
}

func BitStringContent(b asn1go.BitString) []byte {
	n := max((b.BitLength+7)/8, 0)
	out := make([]byte, 1+n)
	out[0] = byte(b.UnusedBits())
	copy(out[1:], b.Bytes[:min(n, len(b.Bytes))])
	if n > 0 {
		out[n] &= 0xff << uint(b.UnusedBits())
	}
	return out
}

func concatSegments(e asn1go.RawValue, universal uint32, typeName string) ([]byte, error) {
	if !e.Tag.Constructed {
		return append([]byte(nil), e.Content...), nil
	}
	parts, err := segments(e, universal, typeName)
	if err != nil {
		return nil, err
	}
	out := []byte{}
	for _, part := range parts {
		out = append(out, part.Content...)
	}
	return out, nil
}

func ParseOctetString(e asn1go.RawValue) ([]byte, error) {
	return concatSegments(e, asn1core.TagOctetString, "OCTET STRING")
}

// ParseString decodes one of the restricted character string types. Every
// segment of a constructed encoding is checked against the character set.
func ParseString(e asn1go.RawValue, kind asn1core.StringKind) (string, error) {
	if !e.Tag.Constructed {
		return decodeStringBytes(kind, e.Content)
	}
	parts, err := segments(e, kind.Number(), kind.String())
	if err != nil {
		return "", err
	}
	var content []byte
	for _, part := range parts {
		if _, err := decodeStringBytes(kind, part.Content); err != nil && kind != asn1core.UTF8String {
			return "", err
		}
		content = append(content, part.Content...)
	}
	return decodeStringBytes(kind, content)
}
