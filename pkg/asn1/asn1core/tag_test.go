package asn1core

import "testing"

func TestTagMatching(t *testing.T) {
	a := NewUniversal(TagSequence).WithConstructed(true)
	b := NewUniversal(TagSequence)
	if !a.Equal(b) {
		t.Errorf("constructed bit must not affect equality")
	}
	if !a.Matches(ClassUniversal, TagSequence) {
		t.Errorf("expected %s to match universal SEQUENCE", a)
	}
	if a.Matches(ClassContextSpecific, TagSequence) {
		t.Errorf("class must be part of identity")
	}
	if a.Key() != b {
		t.Errorf("got key %+v, want %+v", a.Key(), b)
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{NewUniversal(TagInteger), "[UNIVERSAL 2]"},
		{New(ClassContextSpecific, 1), "[1]"},
		{New(ClassApplication, 3), "[APPLICATION 3]"},
		{New(ClassPrivate, 12), "[PRIVATE 12]"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			if got := test.tag.String(); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
			parsed, err := ParseTag(test.want)
			if err != nil {
				t.Fatal(err)
			}
			if !parsed.Equal(test.tag) {
				t.Errorf("got %s, want %s", parsed, test.tag)
			}
		})
	}
}

func TestParseTagErrors(t *testing.T) {
	for _, s := range []string{"", "1", "[]", "[CONTEXT]", "[FOO 1]", "[1 2 3]", "[-1]"} {
		if _, err := ParseTag(s); err == nil {
			t.Errorf("expected error parsing %q", s)
		}
	}
}

func TestUniversalNames(t *testing.T) {
	if got := UniversalName(TagOID); got != "OBJECT IDENTIFIER" {
		t.Errorf("got %q, want %q", got, "OBJECT IDENTIFIER")
	}
	n, err := LookupUniversal("oid")
	if err != nil || n != TagOID {
		t.Errorf("got %d, %v, want %d", n, err, TagOID)
	}
	if UniversalName(0x1F) != "" {
		t.Errorf("expected empty name for an unassigned number")
	}
	k, ok := StringKindFor(TagPrintableString)
	if !ok || k != PrintableString || k.String() != "PrintableString" {
		t.Errorf("got %v %v", k, ok)
	}
}

func TestClassIdentifierBits(t *testing.T) {
	for _, c := range []Class{ClassUniversal, ClassApplication, ClassContextSpecific, ClassPrivate} {
		b := c.IdentifierBits() | 0x3f
		if got := ClassOf(b); got != c {
			t.Errorf("got %s, want %s", got, c)
		}
	}
	if got, err := ParseClass("context-specific"); err != nil || got != ClassContextSpecific {
		t.Errorf("got %s, %v, want CONTEXT", got, err)
	}
	if got := Class(9).String(); got != "CLASS 9" {
		t.Errorf("got %q, want %q", got, "CLASS 9")
	}
}
