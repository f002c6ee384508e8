package asn1binary

import (
	"math"
	"testing"
)

func TestEncodeReal(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "09 00"},
		{math.Copysign(0, -1), "09 01 43"},
		{math.Inf(1), "09 01 40"},
		{math.Inf(-1), "09 01 41"},
		{math.NaN(), "09 01 42"},
		{1, "09 03 80 00 01"},
		{10, "09 03 80 01 05"},
		{-10, "09 03 c0 01 05"},
		{0.5, "09 03 80 ff 01"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			e := NewEncoder()
			e.EncodeReal(test.v)
			b, err := e.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if got := toHex(b); got != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
		})
	}
}

func TestDecodeReal(t *testing.T) {
	tests := []struct {
		hex  string
		want float64
	}{
		{"09 00", 0},
		{"09 03 80 01 05", 10},
		{"09 03 c0 01 05", -10},
		// base 8, exponent 1: 5 * 8
		{"09 03 90 01 05", 40},
		// base 16, scale factor 1: 5 * 2 * 16
		{"09 03 a4 01 05", 160},
		// long exponent form
		{"09 04 83 01 01 05", 10},
		{"09 03 80 00 03", 3},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			got, err := NewDecoder(fromHex(t, test.hex)).DecodeReal()
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}

	specials, err := NewDecoder(fromHex(t, "09 01 42")).DecodeReal()
	if err != nil || !math.IsNaN(specials) {
		t.Errorf("got %v, %v; want NaN", specials, err)
	}
	negZero, err := NewDecoder(fromHex(t, "09 01 43")).DecodeReal()
	if err != nil || negZero != 0 || !math.Signbit(negZero) {
		t.Errorf("got %v, %v; want -0", negZero, err)
	}
}

func TestDecodeRealErrors(t *testing.T) {
	tests := []struct {
		hex, want string
	}{
		{"09 01 01", "REAL NR1 decimal encoding not supported"},
		{"09 01 02", "REAL NR2 decimal encoding not supported"},
		{"09 01 03", "REAL NR3 decimal encoding not supported"},
		{"09 01 04", "Invalid REAL decimal encoding"},
		{"09 02 40 00", "Invalid length REAL special value"},
		{"09 01 44", "Invalid REAL special value"},
		{"09 03 b0 01 05", "Invalid REAL base"},
		{"09 01 81", "Insufficient space for REAL exponent"},
		{"09 01 83", "Insufficient space for REAL exponent"},
		{"09 03 83 00 05", "Invalid REAL exponent length"},
		{"09 03 83 05 00", "Unsupported REAL exponent length"},
		{"29 00", "REAL does not have constructed form"},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, test.hex)).DecodeReal()
			expectError(t, err, test.want)
		})
	}
}

func TestRealRoundTrip(t *testing.T) {
	for _, v := range []float64{3.14159, -2.5e-300, 1e300, math.SmallestNonzeroFloat64, math.MaxFloat64, 1.0 / 3} {
		e := NewEncoder()
		e.EncodeReal(v)
		b, err := e.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		got, err := NewDecoder(b).DecodeReal()
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("got %v, want %v", got, v)
		}
	}
}
