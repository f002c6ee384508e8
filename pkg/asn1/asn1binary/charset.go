package asn1binary

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

// CharSetByteValidator is a 256 bit membership set over octet values.
type CharSetByteValidator [256 / 32]uint32

func getIndexAndMask(r byte) (int, uint32) {
	return int(r) / 32, 1 << uint32(r%32)
}

func (c *CharSetByteValidator) Contains(r byte) bool {
	n, mask := getIndexAndMask(r)
	return c[n]&mask != 0
}

func (c *CharSetByteValidator) ValidateBytes(bytes []byte) bool {
	for _, r := range bytes {
		if !c.Contains(r) {
			return false
		}
	}
	return true
}

func (c *CharSetByteValidator) setChars(chars ...byte) *CharSetByteValidator {
	for _, r := range chars {
		c.set(r)
	}
	return c
}

func (c *CharSetByteValidator) setCharRange(from, to byte) *CharSetByteValidator {
	for r := int(from); r <= int(to); r++ {
		c.set(byte(r))
	}
	return c
}

func (c *CharSetByteValidator) set(r byte) *CharSetByteValidator {
	n, mask := getIndexAndMask(r)
	c[n] |= mask
	return c
}

var (
	NumericStringValidator   CharSetByteValidator
	PrintableStringValidator CharSetByteValidator
	IA5StringValidator       CharSetByteValidator
	VisibleStringValidator   CharSetByteValidator
	GraphicStringValidator   CharSetByteValidator
	GeneralStringValidator   CharSetByteValidator
)

var byteValidators = map[asn1core.StringKind]*CharSetByteValidator{
	asn1core.NumericString:    &NumericStringValidator,
	asn1core.PrintableString:  &PrintableStringValidator,
	asn1core.IA5String:        &IA5StringValidator,
	asn1core.VisibleString:    &VisibleStringValidator,
	asn1core.GraphicString:    &GraphicStringValidator,
	asn1core.ObjectDescriptor: &GraphicStringValidator,
	asn1core.GeneralString:    &GeneralStringValidator,
}

func init() {
	NumericStringValidator.setCharRange('0', '9').setChars(' ')
	PrintableStringValidator.setCharRange('A', 'Z').setCharRange('a', 'z').setCharRange('0', '9').setChars(' ', '\'', '(', ')', '+', ',', '-', '.', '/', ':', '=', '?')
	IA5StringValidator.setCharRange(0, 127)
	VisibleStringValidator.setCharRange(' ', '~')
	GraphicStringValidator.setCharRange(' ', '~').setCharRange(0xa0, 0xff)
	GeneralStringValidator.setCharRange(0, 0xff)
}

func errInvalidString(kind asn1core.StringKind) error {
	return asn1error.New(asn1error.InvalidContent, "Invalid %s value", kind)
}

// decodeStringBytes turns wire octets into text. Single byte character sets
// map each octet to the code point of the same value.
func decodeStringBytes(kind asn1core.StringKind, b []byte) (string, error) {
	switch kind {
	case asn1core.UTF8String:
		if !utf8.Valid(b) {
			return "", errInvalidString(kind)
		}
		return string(b), nil
	case asn1core.BMPString:
		if len(b)%2 != 0 {
			return "", asn1error.New(asn1error.MalformedLength, "Invalid BMPString data length")
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
			if utf16.IsSurrogate(rune(units[i])) {
				return "", errInvalidString(kind)
			}
		}
		return string(utf16.Decode(units)), nil
	}
	validator, ok := byteValidators[kind]
	if !ok {
		return "", asn1error.New(asn1error.Unsupported, "Unsupported string type %s", kind)
	}
	if !validator.ValidateBytes(b) {
		return "", errInvalidString(kind)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes), nil
}

// StringContent encodes s for the given string type, rejecting characters
// outside its character set.
func StringContent(kind asn1core.StringKind, s string) ([]byte, error) {
	switch kind {
	case asn1core.UTF8String:
		if !utf8.ValidString(s) {
			return nil, errInvalidString(kind)
		}
		return []byte(s), nil
	case asn1core.BMPString:
		out := make([]byte, 0, 2*len(s))
		for _, r := range s {
			if r > 0xffff || utf16.IsSurrogate(r) {
				return nil, errInvalidString(kind)
			}
			out = append(out, byte(r>>8), byte(r))
		}
		return out, nil
	}
	validator, ok := byteValidators[kind]
	if !ok {
		return nil, asn1error.New(asn1error.Unsupported, "Unsupported string type %s", kind)
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff || !validator.Contains(byte(r)) {
			return nil, errInvalidString(kind)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// ValidateString reports whether s can be encoded as the given string type.
func ValidateString(kind asn1core.StringKind, s string) error {
	_, err := StringContent(kind, s)
	return err
}
