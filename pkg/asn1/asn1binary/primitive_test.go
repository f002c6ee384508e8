package asn1binary

import (
	"math"
	"testing"
)

func TestDecodeInteger(t *testing.T) {
	tests := []struct {
		hex  string
		want int64
	}{
		{"02 01 00", 0},
		{"02 01 7f", 127},
		{"02 02 00 80", 128},
		{"02 01 80", -128},
		{"02 02 ff 7f", -129},
		{"02 08 7f ff ff ff ff ff ff ff", math.MaxInt64},
		{"02 08 80 00 00 00 00 00 00 00", math.MinInt64},
		{"02 02 00 00", 0},
		{"02 03 00 00 00", 0},
		{"02 02 ff ff", -1},
		// an implicit tag is not checked by the raw accessor
		{"81 01 2a", 42},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			got, err := NewDecoder(fromHex(t, test.hex)).DecodeInteger()
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("got %d, want %d", got, test.want)
			}
		})
	}
}

func TestDecodeIntegerErrors(t *testing.T) {
	tests := []struct {
		hex, want string
	}{
		{"02 00", "Invalid INTEGER data length"},
		{"02 09 00 00 00 00 00 00 00 00 01", "INTEGER greater than 64 bits not supported"},
		{"22 01 00", "INTEGER does not have constructed form"},
		{"02 02 00", "Insufficient data"},
		{"02", "Insufficient data"},
		{"02 80 00 00", "Indefinite length not supported"},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, test.hex)).DecodeInteger()
			expectError(t, err, test.want)
		})
	}
}

func TestEncodeInteger(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "02 01 00"},
		{127, "02 01 7f"},
		{128, "02 02 00 80"},
		{-128, "02 01 80"},
		{-129, "02 02 ff 7f"},
		{2020, "02 02 07 e4"},
		{math.MaxInt64, "02 08 7f ff ff ff ff ff ff ff"},
		{math.MinInt64, "02 08 80 00 00 00 00 00 00 00"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			e := NewEncoder()
			if err := e.EncodeInteger(test.n); err != nil {
				t.Fatal(err)
			}
			b, _ := e.Bytes()
			if got := toHex(b); got != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
		})
	}
}

func TestDecodeBoolean(t *testing.T) {
	tests := []struct {
		hex  string
		want bool
	}{
		{"01 01 00", false},
		{"01 01 ff", true},
		{"01 01 01", true},
	}
	for _, test := range tests {
		t.Run(test.hex, func(t *testing.T) {
			got, err := NewDecoder(fromHex(t, test.hex)).DecodeBoolean()
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}

	errorTests := []struct {
		hex, want string
	}{
		{"01 00", "Invalid BOOLEAN data length"},
		{"01 02 00 00", "Invalid BOOLEAN data length"},
		{"21 01 00", "BOOLEAN does not have constructed form"},
	}
	for _, test := range errorTests {
		t.Run(test.hex, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, test.hex)).DecodeBoolean()
			expectError(t, err, test.want)
		})
	}
}

func TestNull(t *testing.T) {
	if _, err := NewDecoder(fromHex(t, "05 00")).DecodeNull(); err != nil {
		t.Fatal(err)
	}
	_, err := NewDecoder(fromHex(t, "05 01 00")).DecodeNull()
	expectError(t, err, "Invalid NULL data length")
	_, err = NewDecoder(fromHex(t, "25 00")).DecodeNull()
	expectError(t, err, "NULL does not have constructed form")
}

func TestOID(t *testing.T) {
	tests := []struct {
		hex, want string
	}{
		{"06 03 88 37 03", "2.999.3"},
		{"06 06 2a 86 48 86 f7 0d", "1.2.840.113549"},
		{"06 01 00", "0.0"},
		{"06 03 2b 06 01", "1.3.6.1"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			oid, err := NewDecoder(fromHex(t, test.hex)).DecodeOID()
			if err != nil {
				t.Fatal(err)
			}
			if oid.String() != test.want {
				t.Errorf("got %s, want %s", oid, test.want)
			}
			e := NewEncoder()
			e.EncodeOID(oid)
			b, err := e.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if got := toHex(b); got != test.hex {
				t.Errorf("got %s, want %s", got, test.hex)
			}
		})
	}

	for _, bad := range []string{"06 00", "06 02 2b 86", "06 02 80 01", "26 01 00"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := NewDecoder(fromHex(t, bad)).DecodeOID()
			if bad == "26 01 00" {
				expectError(t, err, "OBJECT IDENTIFIER does not have constructed form")
				return
			}
			expectError(t, err, "Invalid OBJECT IDENTIFIER")
		})
	}

	e := NewEncoder()
	expectError(t, e.EncodeOID([]uint32{1, 40}), "Invalid OBJECT IDENTIFIER")
	expectError(t, NewEncoder().EncodeOID([]uint32{3, 1}), "Invalid OBJECT IDENTIFIER")
	expectError(t, NewEncoder().EncodeOID([]uint32{1}), "Invalid OBJECT IDENTIFIER")
}

func TestRelativeOID(t *testing.T) {
	oid, err := NewDecoder(fromHex(t, "0d 04 c2 7b 03 02")).DecodeRelativeOID()
	if err != nil {
		t.Fatal(err)
	}
	if oid.String() != "8571.3.2" {
		t.Errorf("got %s, want 8571.3.2", oid)
	}
	empty, err := NewDecoder(fromHex(t, "0d 00")).DecodeRelativeOID()
	if err != nil || len(empty) != 0 {
		t.Errorf("got %v, %v for an empty RELATIVE-OID", empty, err)
	}
	_, err = NewDecoder(fromHex(t, "0d 01 81")).DecodeRelativeOID()
	expectError(t, err, "Invalid RELATIVE-OID")
}
