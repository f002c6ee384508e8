package asn1go

import (
	"bytes"
	"slices"
	"strings"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

// BitString is a sequence of bits stored MSB first. Bits past BitLength in
// the final byte are always zero.
type BitString struct {
	Bytes     []byte
	BitLength int
}

func NewBitString(bits string) (BitString, error) {
	var b BitString
	for i, c := range bits {
		switch c {
		case '0':
			b.AppendBit(false)
		case '1':
			b.AppendBit(true)
		default:
			return BitString{}, asn1error.NewErrorf("invalid bit %q at offset %d", c, i).WithType(asn1error.InvalidContent)
		}
	}
	return b, nil
}

func (b BitString) At(i int) bool {
	if i < 0 || i >= b.BitLength {
		return false
	}
	return b.Bytes[i/8]&(0x80>>uint(i%8)) != 0
}

func (b *BitString) AppendBit(set bool) {
	if b.BitLength%8 == 0 {
		b.Bytes = append(b.Bytes, 0)
	}
	if set {
		b.Bytes[b.BitLength/8] |= 0x80 >> uint(b.BitLength%8)
	}
	b.BitLength++
}

// Append adds all bits of other to the end of b.
func (b *BitString) Append(other BitString) {
	if b.BitLength%8 == 0 {
		b.Bytes = append(slices.Clip(b.Bytes[:b.BitLength/8]), other.Bytes[:(other.BitLength+7)/8]...)
		b.BitLength += other.BitLength
		return
	}
	for i := 0; i < other.BitLength; i++ {
		b.AppendBit(other.At(i))
	}
}

// UnusedBits is the number of padding bits in the final byte.
func (b BitString) UnusedBits() int {
	return (8 - b.BitLength%8) % 8
}

// valid reports whether Bytes holds every bit BitLength claims.
func (b BitString) valid() bool {
	return b.BitLength >= 0 && len(b.Bytes) >= (b.BitLength+7)/8
}

func (b BitString) Equal(other BitString) bool {
	if b.BitLength != other.BitLength || !b.valid() || !other.valid() {
		return false
	}
	n := (b.BitLength + 7) / 8
	return bytes.Equal(b.Bytes[:n], other.Bytes[:n])
}

func (b BitString) String() string {
	sb := strings.Builder{}
	sb.Grow(b.BitLength)
	for i := 0; i < b.BitLength; i++ {
		if b.At(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
