package asn1binary

import (
	"math"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

func errInsufficientData() error {
	return asn1error.New(asn1error.MalformedLength, "Insufficient data")
}

// parseHeader reads the identifier and length octets at the start of data.
// It returns the tag, the size of the header and the content length, after
// checking that the content fits in data.
func parseHeader(data []byte) (asn1core.Tag, int, int, error) {
	tag, headerLen, length, err := readHeader(data)
	if err != nil {
		return tag, 0, 0, err
	}
	if length > len(data)-headerLen {
		return tag, 0, 0, errInsufficientData()
	}
	return tag, headerLen, length, nil
}

// readHeader is parseHeader without the check that the content is present.
func readHeader(data []byte) (asn1core.Tag, int, int, error) {
	var tag asn1core.Tag
	if len(data) == 0 {
		return tag, 0, 0, errInsufficientData()
	}
	b := data[0]
	tag.Class = asn1core.ClassOf(b)
	tag.Constructed = b&0x20 != 0
	tag.Number = uint32(b & 0x1f)
	i := 1
	if tag.Number == 0x1f {
		var n uint64
		for {
			if i >= len(data) {
				return tag, 0, 0, errInsufficientData()
			}
			b = data[i]
			i++
			n = n<<7 | uint64(b&0x7f)
			if n > math.MaxUint32 {
				return tag, 0, 0, asn1error.New(asn1error.Unsupported, "Tag number too large")
			}
			if b&0x80 == 0 {
				break
			}
		}
		tag.Number = uint32(n)
	}

	if i >= len(data) {
		return tag, 0, 0, errInsufficientData()
	}
	b = data[i]
	i++
	length := int(b)
	if b&0x80 != 0 {
		count := int(b & 0x7f)
		switch {
		case count == 0:
			return tag, 0, 0, asn1error.New(asn1error.Unsupported, "Indefinite length not supported")
		case count == 0x7f:
			return tag, 0, 0, asn1error.New(asn1error.MalformedLength, "Invalid length")
		case i+count > len(data):
			return tag, 0, 0, errInsufficientData()
		}
		var n uint64
		for _, lb := range data[i : i+count] {
			if n > math.MaxInt32 {
				return tag, 0, 0, errInsufficientData()
			}
			n = n<<8 | uint64(lb)
		}
		i += count
		if n > math.MaxInt32 {
			return tag, 0, 0, errInsufficientData()
		}
		length = int(n)
	}
	return tag, i, length, nil
}

// EncodeIdentifier returns the identifier octets for tag, using the high tag
// number form for numbers of 31 and above.
func EncodeIdentifier(tag asn1core.Tag) []byte {
	b := tag.Class.IdentifierBits()
	if tag.Constructed {
		b |= 0x20
	}
	if tag.Number < 0x1f {
		return []byte{b | byte(tag.Number)}
	}
	out := []byte{b | 0x1f}
	return appendBase128(out, uint64(tag.Number))
}

// EncodeDefiniteLength returns the short form for n < 128, otherwise 0x80|k
// followed by the minimal k byte big-endian encoding of n.
func EncodeDefiniteLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var tmp [8]byte
	k := 0
	for v := uint64(n); v > 0; v >>= 8 {
		k++
		tmp[8-k] = byte(v)
	}
	return append([]byte{0x80 | byte(k)}, tmp[8-k:]...)
}

// AppendElement appends a complete TLV to dst.
func AppendElement(dst []byte, tag asn1core.Tag, content []byte) []byte {
	dst = append(dst, EncodeIdentifier(tag)...)
	dst = append(dst, EncodeDefiniteLength(len(content))...)
	return append(dst, content...)
}

func appendBase128(dst []byte, n uint64) []byte {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(n & 0x7f)
	for n >>= 7; n > 0; n >>= 7 {
		i--
		tmp[i] = byte(n&0x7f) | 0x80
	}
	return append(dst, tmp[i:]...)
}
