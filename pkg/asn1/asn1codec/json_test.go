package asn1codec

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

func TestJSONRoundTrip(t *testing.T) {
	typ := asn1schema.NewSequence(false,
		component("id", &asn1schema.Integer{}),
		component("data", &asn1schema.OctetString{}),
		component("flags", &asn1schema.BitString{}),
		component("oid", &asn1schema.ObjectIdentifier{}),
		component("ratio", asn1schema.NewOptional(&asn1schema.Real{})),
		component("pick", asn1schema.NewChoice(true,
			component("name", asn1schema.NewString(asn1core.PrintableString)),
			component("count", &asn1schema.Integer{}),
		)),
		component("items", asn1schema.NewSequenceOf(&asn1schema.Boolean{})),
	)
	wire := "30 1f 02 01 07 04 02 ca fe 03 02 05 a0 06 03 2b 06 01 09 01 40 13 02 68 69 30 06 01 01 ff 01 01 00"

	decoded := mustDecode(t, typ, wire)
	j, err := ToJSON(typ, decoded)
	if err != nil {
		t.Fatal(err)
	}
	text, err := json.Marshal(j)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":7,"data":"cafe","flags":"101","oid":"1.3.6.1","ratio":"INF","pick":{"name":"hi"},"items":[true,false]}`
	if string(text) != want {
		t.Errorf("got %s, want %s", text, want)
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		t.Fatal(err)
	}
	v, err := FromJSON(typ, parsed)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustEncode(t, typ, v); got != wire {
		t.Errorf("got %s, want %s", got, wire)
	}
}

func TestJSONUnknownChoice(t *testing.T) {
	typ := asn1schema.NewChoice(true, component("count", &asn1schema.Integer{}))
	decoded := mustDecode(t, typ, "01 01 ff")
	j, err := ToJSON(typ, decoded)
	if err != nil {
		t.Fatal(err)
	}
	text, _ := json.Marshal(j)
	if string(text) != `{"":"0101ff"}` {
		t.Errorf("got %s", text)
	}
	v, err := FromJSON(typ, map[string]any{"": "0101ff"})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustEncode(t, typ, v); got != "01 01 ff" {
		t.Errorf("got %s, want 01 01 ff", got)
	}
}

func TestFromJSONErrors(t *testing.T) {
	typ := asn1schema.NewSequence(false, component("id", &asn1schema.Integer{}))
	_, err := FromJSON(typ, map[string]any{"id": json.Number("1"), "extra": true})
	expectError(t, err, "Unknown SEQUENCE component extra")
	_, err = FromJSON(typ, map[string]any{"id": "one"})
	expectError(t, err, "Unknown type string provided for INTEGER")
	_, err = FromJSON(&asn1schema.OctetString{}, "zz")
	expectError(t, err, `Invalid hex data "zz"`)
}
