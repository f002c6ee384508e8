package asn1reflect

import (
	"testing"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type varBind struct {
	Name  asn1go.OID `asn1:"name"`
	Value any        `asn1:"value"`
}

type request struct {
	ID       int32     `asn1:"request-id"`
	Status   uint8     `asn1:"error-status"`
	Note     *string   `asn1:"note"`
	When     time.Time `asn1:"when"`
	Bindings []varBind `asn1:"variable-bindings"`
	Scratch  string    `asn1:"-"`
	internal int
}

func TestNormalizeStruct(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := request{
		ID:   7,
		When: when,
		Bindings: []varBind{
			{Name: asn1go.OID{1, 3, 6}, Value: asn1go.Null{}},
		},
		Scratch:  "ignored",
		internal: 3,
	}
	v, err := Normalize(r)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := asn1go.AsMap(v)
	if !ok {
		t.Fatalf("got %T, want a map", v)
	}
	want := []string{"request-id", "error-status", "when", "variable-bindings"}
	keys := m.Keys()
	if len(keys) != len(want) {
		t.Fatalf("got keys %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: got %q, want %q", i, keys[i], want[i])
		}
	}
	if id, _ := m.Get("request-id"); id != int64(7) {
		t.Errorf("got request-id %#v, want int64(7)", id)
	}
	bindings, _ := m.Get("variable-bindings")
	list, ok := asn1go.AsList(bindings)
	if !ok || len(list) != 1 {
		t.Fatalf("got %#v, want one binding", bindings)
	}
	first, _ := asn1go.AsMap(list[0])
	if name, _ := first.Get("name"); !asn1go.Equal(name, asn1go.OID{1, 3, 6}) {
		t.Errorf("got name %v, want 1.3.6", name)
	}
}

func TestAssignStruct(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	v := asn1go.NewOrderedMap().
		Set("request-id", int64(9)).
		Set("error-status", int64(2)).
		Set("note", "hello").
		Set("when", when).
		Set("variable-bindings", []any{
			asn1go.NewOrderedMap().Set("name", asn1go.OID{1, 3}).Set("value", int64(4)),
		})
	var r request
	if err := Assign(&r, v); err != nil {
		t.Fatal(err)
	}
	if r.ID != 9 || r.Status != 2 {
		t.Errorf("got id %d status %d, want 9 and 2", r.ID, r.Status)
	}
	if r.Note == nil || *r.Note != "hello" {
		t.Errorf("got note %v, want hello", r.Note)
	}
	if !r.When.Equal(when) {
		t.Errorf("got %v, want %v", r.When, when)
	}
	if len(r.Bindings) != 1 || r.Bindings[0].Value != int64(4) {
		t.Errorf("got %#v", r.Bindings)
	}
}

func TestAssignErrors(t *testing.T) {
	var small int8
	tests := []struct {
		name string
		dst  any
		v    any
		want string
	}{
		{"not a pointer", small, int64(1), "cannot assign into a non-pointer int8"},
		{"overflow", &small, int64(300), "value 300 overflows int8"},
		{"negative unsigned", new(uint16), int64(-1), "value -1 overflows uint16"},
		{"shape", new(bool), "yes", "cannot assign string to bool"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Assign(test.dst, test.v)
			if err == nil {
				t.Fatalf("got no error, want %q", test.want)
			}
			if err.Error() != test.want {
				t.Errorf("got %q, want %q", err.Error(), test.want)
			}
		})
	}
}

func TestNormalizeStringMap(t *testing.T) {
	v, err := Normalize(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	m, _ := asn1go.AsMap(v)
	if got := m.String(); got != "{a: 1, b: 2}" {
		t.Errorf("got %q", got)
	}
}
