package asn1binary

import (
	"math"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// X.690 8.5.9 special values.
const (
	realPlusInfinity  = 0x40
	realMinusInfinity = 0x41
	realNaN           = 0x42
	realMinusZero     = 0x43
)

func ParseReal(e asn1go.RawValue) (float64, error) {
	if e.Tag.Constructed {
		return 0, errNotConstructed("REAL")
	}
	c := e.Content
	if len(c) == 0 {
		return 0, nil
	}
	switch {
	case c[0]&0x80 != 0:
		return parseBinaryReal(c)
	case c[0]&0x40 != 0:
		return parseSpecialReal(c)
	}
	return 0, decimalRealError(c[0])
}

func parseSpecialReal(c []byte) (float64, error) {
	if len(c) != 1 {
		return 0, asn1error.New(asn1error.InvalidContent, "Invalid length REAL special value")
	}
	switch c[0] {
	case realPlusInfinity:
		return math.Inf(1), nil
	case realMinusInfinity:
		return math.Inf(-1), nil
	case realNaN:
		return math.NaN(), nil
	case realMinusZero:
		return math.Copysign(0, -1), nil
	}
	return 0, asn1error.New(asn1error.InvalidContent, "Invalid REAL special value")
}

// Decimal forms follow ISO 6093 and are not implemented.
func decimalRealError(first byte) error {
	switch first & 0x3f {
	case 1:
		return asn1error.New(asn1error.Unsupported, "REAL NR1 decimal encoding not supported")
	case 2:
		return asn1error.New(asn1error.Unsupported, "REAL NR2 decimal encoding not supported")
	case 3:
		return asn1error.New(asn1error.Unsupported, "REAL NR3 decimal encoding not supported")
	}
	return asn1error.New(asn1error.InvalidContent, "Invalid REAL decimal encoding")
}

func parseBinaryReal(c []byte) (float64, error) {
	first := c[0]
	var log2Base int
	switch (first >> 4) & 0x03 {
	case 0:
		log2Base = 1
	case 1:
		log2Base = 3
	case 2:
		log2Base = 4
	default:
		return 0, asn1error.New(asn1error.InvalidContent, "Invalid REAL base")
	}
	scale := int((first >> 2) & 0x03)

	pos := 1
	expLen := int(first&0x03) + 1
	if expLen == 4 {
		if len(c) < 2 {
			return 0, asn1error.New(asn1error.MalformedLength, "Insufficient space for REAL exponent")
		}
		expLen = int(c[1])
		pos = 2
		if expLen == 0 {
			return 0, asn1error.New(asn1error.InvalidContent, "Invalid REAL exponent length")
		}
		if expLen > 4 {
			return 0, asn1error.New(asn1error.Unsupported, "Unsupported REAL exponent length")
		}
	}
	if len(c) < pos+expLen {
		return 0, asn1error.New(asn1error.MalformedLength, "Insufficient space for REAL exponent")
	}
	exponent, _ := parseInt64(c[pos : pos+expLen])

	digits := c[pos+expLen:]
	var mantissa float64
	if len(digits) <= 8 {
		var m uint64
		for _, b := range digits {
			m = m<<8 | uint64(b)
		}
		mantissa = float64(m)
	} else {
		for _, b := range digits {
			mantissa = mantissa*256 + float64(b)
		}
	}
	v := math.Ldexp(mantissa, scale+int(exponent)*log2Base)
	if first&0x40 != 0 {
		v = -v
	}
	return v, nil
}

// RealContent encodes v in base 2 with a zero scale factor, an odd mantissa
// and the shortest exponent.
func RealContent(v float64) []byte {
	switch {
	case math.IsNaN(v):
		return []byte{realNaN}
	case math.IsInf(v, 1):
		return []byte{realPlusInfinity}
	case math.IsInf(v, -1):
		return []byte{realMinusInfinity}
	case v == 0 && math.Signbit(v):
		return []byte{realMinusZero}
	case v == 0:
		return []byte{}
	}

	first := byte(0x80)
	if v < 0 {
		first |= 0x40
		v = -v
	}
	frac, exp := math.Frexp(v)
	mantissa := uint64(math.Ldexp(frac, 53))
	exp -= 53
	for mantissa&1 == 0 {
		mantissa >>= 1
		exp++
	}

	expBytes := IntegerContent(int64(exp))
	var out []byte
	if len(expBytes) <= 3 {
		out = append(out, first|byte(len(expBytes)-1))
	} else {
		out = append(out, first|0x03, byte(len(expBytes)))
	}
	out = append(out, expBytes...)

	var tmp [8]byte
	k := 0
	for m := mantissa; m > 0; m >>= 8 {
		k++
		tmp[8-k] = byte(m)
	}
	return append(out, tmp[8-k:]...)
}
