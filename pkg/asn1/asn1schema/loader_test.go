package asn1schema

import (
	"strings"
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleModule = `
module: Example
tagging: implicit
types:
  Message:
    type: SEQUENCE
    components:
      - {name: version, type: Version, default: 1}
      - {name: community, type: OCTET STRING}
      - {name: body, type: Body}
      - {name: trailer, type: Trailer, optional: true}
  Version:
    type: INTEGER
    min: 0
    max: 3
  Body:
    type: CHOICE
    alternatives:
      - {name: get, type: Names, tag: "[0]"}
      - {name: reply, type: Names, tag: "[1]", explicit: true}
  Names:
    type: SEQUENCE OF
    of: IA5String
  Trailer:
    type: ENUMERATED
    extensible: true
    items: [none, short, long]
  Tree:
    type: SEQUENCE
    components:
      - {name: label, type: UTF8String}
      - name: children
        type: SEQUENCE OF
        of: Tree
`

func TestLoadModule(t *testing.T) {
	m, err := LoadModule(strings.NewReader(exampleModule))
	require.NoError(t, err)
	assert.Equal(t, "Example", m.Name())
	assert.Equal(t, ImplicitTagging, m.Tagging())
	assert.Equal(t, []string{"Body", "Message", "Names", "Trailer", "Tree", "Version"}, m.Names())

	message, ok := m.Lookup("Message")
	require.True(t, ok)
	seq, ok := message.(*Sequence)
	require.True(t, ok, "got %T", message)
	require.Len(t, seq.Components(), 4)

	version, ok := seq.Components()[0].Type.(*Default)
	require.True(t, ok)
	assert.Equal(t, int64(1), version.Value())
	integer, ok := BaseType(version).(*Integer)
	require.True(t, ok)
	assert.False(t, integer.InRange(4))

	_, isOptional := seq.Components()[3].Type.(*Optional)
	assert.True(t, isOptional)

	body, _ := m.Lookup("Body")
	choice := body.(*Choice)
	get, _ := choice.Alternative("get")
	getTag := get.Type.(*Tagged)
	assert.False(t, getTag.IsExplicit())
	assert.Equal(t, asn1core.New(asn1core.ClassContextSpecific, 0), getTag.Tag())
	reply, _ := choice.Alternative("reply")
	assert.True(t, reply.Type.(*Tagged).IsExplicit())

	trailer, _ := m.Lookup("Trailer")
	name, ok := trailer.(*Enumerated).NameOf(2)
	assert.True(t, ok)
	assert.Equal(t, "long", name)

	tree, _ := m.Lookup("Tree")
	children := tree.(*Sequence).Components()[1].Type.(*SequenceOf)
	assert.Same(t, tree, Deref(children.Element()))
}

func TestLoadModuleAutomaticTagging(t *testing.T) {
	m, err := LoadModule(strings.NewReader(`
module: Auto
tagging: automatic
types:
  Pair:
    type: SET
    components:
      - {name: left, type: INTEGER}
      - {name: right, type: INTEGER}
      - {name: either, type: Either}
  Either:
    type: CHOICE
    alternatives:
      - {name: flag, type: BOOLEAN}
      - {name: text, type: UTF8String}
`))
	require.NoError(t, err)
	pair, _ := m.Lookup("Pair")
	components := pair.(*Set).Components()
	for i, c := range components {
		tagged, ok := c.Type.(*Tagged)
		require.True(t, ok, "component %s is not tagged", c.Name)
		assert.Equal(t, uint32(i), tagged.Tag().Number)
	}
	assert.True(t, components[2].Type.(*Tagged).IsExplicit(), "a tagged CHOICE is always explicit")
	assert.False(t, components[0].Type.(*Tagged).IsExplicit())
}

func TestLoadModuleErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			"unknown reference",
			"module: M\ntypes:\n  A: {type: SEQUENCE, components: [{name: b, type: Missing}]}\n",
			"Unknown type Missing in module M",
		},
		{
			"alias cycle",
			"module: M\ntypes:\n  A: B\n  B: A\n",
			"has no tag of its own",
		},
		{
			"choice cycle",
			"module: M\ntypes:\n  C: {type: CHOICE, alternatives: [{name: again, type: C}, {name: n, type: NULL}]}\n",
			"Recursive definition of C has no tag of its own",
		},
		{
			"set collision",
			"module: M\ntypes:\n  S: {type: SET, components: [{name: a, type: INTEGER}, {name: b, type: I}]}\n  I: INTEGER\n",
			"SET components a and b have the same tag [UNIVERSAL 2]",
		},
		{
			"bad default",
			"module: M\ntypes:\n  S: {type: SEQUENCE, components: [{name: a, type: BOOLEAN, default: maybe}]}\n",
			"Unknown type string provided for BOOLEAN",
		},
		{
			"optional alternative",
			"module: M\ntypes:\n  C: {type: CHOICE, alternatives: [{name: a, type: NULL, optional: true}]}\n",
			`unexpected fields: "optional"`,
		},
		{
			"unknown field",
			"module: M\ntypes:\n  I: {type: INTEGER, size: 3}\n",
			`unexpected fields: "size"`,
		},
		{
			"bare structured name",
			"module: M\ntypes:\n  S: SEQUENCE\n",
			"SEQUENCE needs a definition, not just a name",
		},
		{
			"unknown document field",
			"module: M\nimports: []\ntypes: {}\n",
			"field imports not found",
		},
		{
			"missing module name",
			"types: {}\n",
			"module name is required",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadModule(strings.NewReader(test.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
			assert.Equal(t, asn1error.SchemaViolation, asn1error.TypeOf(err))
		})
	}
}

func TestLoadedDefaultsAreChecked(t *testing.T) {
	m, err := LoadModule(strings.NewReader(`
module: D
types:
  S:
    type: SEQUENCE
    components:
      - {name: oid, type: OBJECT IDENTIFIER, default: "1.3.6.1"}
      - {name: raw, type: OCTET STRING, default: cafe}
      - {name: bits, type: BIT STRING, default: "101"}
`))
	require.NoError(t, err)
	s, _ := m.Lookup("S")
	components := s.(*Sequence).Components()
	assert.True(t, asn1go.Equal(asn1go.OID{1, 3, 6, 1}, components[0].Type.(*Default).Value()))
	assert.Equal(t, []byte{0xca, 0xfe}, components[1].Type.(*Default).Value())
	bits, _ := asn1go.NewBitString("101")
	assert.True(t, asn1go.Equal(bits, components[2].Type.(*Default).Value()))
}
