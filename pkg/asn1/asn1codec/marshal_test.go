package asn1codec

import (
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

type person struct {
	Name string  `asn1:"name"`
	Age  int     `asn1:"age"`
	Nick *string `asn1:"nick"`
}

func TestMarshalStruct(t *testing.T) {
	typ := asn1schema.NewSequence(false,
		component("name", asn1schema.NewString(asn1core.UTF8String)),
		component("age", asn1schema.NewRangedInteger(0, 150)),
		component("nick", asn1schema.NewOptional(asn1schema.NewImplicit(asn1core.New(asn1core.ClassContextSpecific, 0), asn1schema.NewString(asn1core.IA5String)))),
	)
	data, err := Marshal(typ, person{Name: "Ann", Age: 40})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := toHex(data), "30 08 0c 03 41 6e 6e 02 01 28"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var p person
	nick := "A"
	withNick, err := Marshal(typ, person{Name: "Ann", Age: 40, Nick: &nick})
	if err != nil {
		t.Fatal(err)
	}
	if err := Unmarshal(withNick, typ, &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ann" || p.Age != 40 || p.Nick == nil || *p.Nick != "A" {
		t.Errorf("got %+v", p)
	}

	_, err = Marshal(typ, person{Name: "Ann", Age: 200})
	expectError(t, err, "INTEGER value 200 out of range")
}
