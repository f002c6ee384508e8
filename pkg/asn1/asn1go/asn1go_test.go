package asn1go

import (
	"math"
	"testing"
	"time"
)

func TestBitString(t *testing.T) {
	tests := []string{"", "1", "1101", "11011101", "101010101"}
	for _, test := range tests {
		t.Run("bits "+test, func(t *testing.T) {
			b, err := NewBitString(test)
			if err != nil {
				t.Fatal(err)
			}
			if got := b.String(); got != test {
				t.Errorf("got %q, want %q", got, test)
			}
			if got, want := len(b.Bytes), (len(test)+7)/8; got != want {
				t.Errorf("got %d bytes, want %d", got, want)
			}
		})
	}
	if _, err := NewBitString("10x"); err == nil {
		t.Errorf("expected an error for a non binary digit")
	}
}

func TestBitStringShortBytes(t *testing.T) {
	short := BitString{Bytes: []byte{0xff}, BitLength: 12}
	if _, ok := AsBitString(short); ok {
		t.Errorf("got ok for %d bits in %d bytes, want a rejection", short.BitLength, len(short.Bytes))
	}
	if _, ok := AsBitString(&BitString{BitLength: -1}); ok {
		t.Errorf("got ok for a negative bit length, want a rejection")
	}
	if short.Equal(short) {
		t.Errorf("got equal for a bit string missing bytes, want not equal")
	}
	if Equal(short, BitString{Bytes: []byte{0xff, 0xf0}, BitLength: 12}) {
		t.Errorf("got equal for a bit string missing bytes, want not equal")
	}
}

func TestBitStringAppend(t *testing.T) {
	a, _ := NewBitString("1101")
	b, _ := NewBitString("1101")
	a.Append(b)
	if got := a.String(); got != "11011101" {
		t.Errorf("got %q, want %q", got, "11011101")
	}
	if a.UnusedBits() != 0 {
		t.Errorf("got %d unused bits, want 0", a.UnusedBits())
	}

	c, _ := NewBitString("10000000")
	d, _ := NewBitString("1")
	c.Append(d)
	if got := c.String(); got != "100000001" {
		t.Errorf("got %q, want %q", got, "100000001")
	}
	if c.UnusedBits() != 7 {
		t.Errorf("got %d unused bits, want 7", c.UnusedBits())
	}
}

func TestOID(t *testing.T) {
	oid, err := ParseOID("2.999.3")
	if err != nil {
		t.Fatal(err)
	}
	if !oid.Equal(OID{2, 999, 3}) {
		t.Errorf("got %v", oid)
	}
	if oid.String() != "2.999.3" {
		t.Errorf("got %q", oid.String())
	}
	if !oid.HasPrefix(OID{2, 999}) || oid.HasPrefix(OID{2, 998}) {
		t.Errorf("prefix check failed")
	}
	for _, bad := range []string{"", "1", "1..2", "1.a", "1.4294967296"} {
		if _, err := ParseOID(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	rel, err := ParseRelativeOID("")
	if err != nil || len(rel) != 0 {
		t.Errorf("got %v %v for an empty relative oid", rel, err)
	}
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap().Set("b", 1).Set("a", 2).Set("b", 3)
	if got := m.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("got keys %v, want [b a]", got)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("got %v, want 3", v)
	}
	m.Delete("b")
	if m.Has("b") || m.Len() != 1 {
		t.Errorf("delete failed: %v", m)
	}
	if got := m.String(); got != "{a: 2}" {
		t.Errorf("got %q", got)
	}
}

func TestAdapterShapes(t *testing.T) {
	if n, ok := AsInt64(int32(-5)); !ok || n != -5 {
		t.Errorf("got %d %v", n, ok)
	}
	if _, ok := AsInt64(uint64(math.MaxUint64)); ok {
		t.Errorf("uint64 overflow should not convert")
	}
	if _, ok := AsInt64("5"); ok {
		t.Errorf("strings are not integers")
	}
	if f, ok := AsFloat64(int64(10)); !ok || f != 10 {
		t.Errorf("got %v %v", f, ok)
	}
	m, ok := AsMap(map[string]any{"z": 1, "a": 2})
	if !ok || m.Keys()[0] != "a" {
		t.Errorf("plain maps should be ordered by key, got %v", m)
	}
	if got := TypeName(struct{}{}); got != "struct {}" {
		t.Errorf("got %q", got)
	}
	if got := TypeName("x"); got != "string" {
		t.Errorf("got %q", got)
	}
}

func TestEqual(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	equal := []struct{ a, b any }{
		{int64(5), 5},
		{math.NaN(), math.NaN()},
		{[]byte{1}, []byte{1}},
		{OID{1, 2}, OID{1, 2}},
		{ts, ts.In(time.FixedZone("", 3600))},
		{Null{}, nil},
		{[]any{int64(1), "a"}, []any{1, "a"}},
		{NewOrderedMap().Set("a", 1), map[string]any{"a": int64(1)}},
		{Choice{"x", true}, Choice{"x", true}},
	}
	for _, test := range equal {
		if !Equal(test.a, test.b) {
			t.Errorf("expected %v == %v", test.a, test.b)
		}
	}
	different := []struct{ a, b any }{
		{int64(5), 6},
		{math.Copysign(0, -1), 0.0},
		{"a", "b"},
		{Choice{"x", true}, Choice{"y", true}},
		{[]any{1}, []any{1, 2}},
	}
	for _, test := range different {
		if Equal(test.a, test.b) {
			t.Errorf("expected %v != %v", test.a, test.b)
		}
	}
}
