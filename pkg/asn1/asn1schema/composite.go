package asn1schema

import (
	"strconv"
	"sync"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

type EnumItem struct {
	Name  string
	Value int64
}

type Enumerated struct {
	items      []EnumItem
	byValue    map[int64]string
	byName     map[string]int64
	extensible bool
}

func NewEnumerated(extensible bool, items ...EnumItem) (*Enumerated, error) {
	t := &Enumerated{
		items:      items,
		byValue:    make(map[int64]string, len(items)),
		byName:     make(map[string]int64, len(items)),
		extensible: extensible,
	}
	for _, item := range items {
		if _, ok := t.byName[item.Name]; ok {
			return nil, asn1error.New(asn1error.SchemaViolation, "Duplicate ENUMERATED name %s", item.Name)
		}
		if other, ok := t.byValue[item.Value]; ok {
			return nil, asn1error.New(asn1error.SchemaViolation, "ENUMERATED items %s and %s have the same value %d", other, item.Name, item.Value)
		}
		t.byName[item.Name] = item.Value
		t.byValue[item.Value] = item.Name
	}
	return t, nil
}

func (*Enumerated) Tags() []asn1core.Tag { return universal(asn1core.TagEnumerated) }
func (*Enumerated) TypeName() string { return "ENUMERATED" }
func (*Enumerated) sealed() {}

func (t *Enumerated) Extensible() bool { return t.extensible }
func (t *Enumerated) Items() []EnumItem { return append([]EnumItem(nil), t.items...) }

func (t *Enumerated) NameOf(value int64) (string, bool) {
	name, ok := t.byValue[value]
	return name, ok
}

// ValueOf maps a name back to its number. An extensible type also accepts
// the decimal form produced for values it does not know.
func (t *Enumerated) ValueOf(name string) (int64, bool) {
	if v, ok := t.byName[name]; ok {
		return v, true
	}
	if t.extensible {
		if v, err := strconv.ParseInt(name, 10, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// Component is a named member of a SEQUENCE, SET or CHOICE.
type Component struct {
	Name string
	Type Type
}

type Sequence struct {
	components []Component
	extensible bool
}

func NewSequence(extensible bool, components ...Component) *Sequence {
	return &Sequence{components: components, extensible: extensible}
}

func (*Sequence) Tags() []asn1core.Tag { return constructed(asn1core.TagSequence) }
func (*Sequence) TypeName() string { return "SEQUENCE" }
func (*Sequence) sealed() {}

func (t *Sequence) Components() []Component { return t.components }
func (t *Sequence) Extensible() bool { return t.extensible }

// Set differs from Sequence only in that its components must have disjoint
// tags, which NewSet enforces.
type Set struct {
	components []Component
	extensible bool
}

func NewSet(extensible bool, components ...Component) (*Set, error) {
	t := &Set{components: components, extensible: extensible}
	if err := t.checkDistinctTags(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Set) checkDistinctTags() error {
	owners := make(map[asn1core.Tag]string)
	for _, c := range t.components {
		tags, err := collectTags(c.Type)
		if err != nil {
			return asn1error.NewErrorf("SET component %s", c.Name).WithCause(err).WithType(asn1error.SchemaViolation)
		}
		for _, tag := range tags {
			if owner, ok := owners[tag.Key()]; ok {
				return asn1error.New(asn1error.SchemaViolation, "SET components %s and %s have the same tag %s", owner, c.Name, tag.Key())
			}
			owners[tag.Key()] = c.Name
		}
	}
	return nil
}

func (*Set) Tags() []asn1core.Tag { return constructed(asn1core.TagSet) }
func (*Set) TypeName() string { return "SET" }
func (*Set) sealed() {}

func (t *Set) Components() []Component { return t.components }
func (t *Set) Extensible() bool { return t.extensible }

type SequenceOf struct {
	element Type
}

func NewSequenceOf(element Type) *SequenceOf {
	return &SequenceOf{element: element}
}

func (*SequenceOf) Tags() []asn1core.Tag { return constructed(asn1core.TagSequence) }
func (*SequenceOf) TypeName() string { return "SEQUENCE OF" }
func (*SequenceOf) sealed() {}
func (t *SequenceOf) Element() Type { return t.element }

type SetOf struct {
	element Type
}

func NewSetOf(element Type) *SetOf {
	return &SetOf{element: element}
}

func (*SetOf) Tags() []asn1core.Tag { return constructed(asn1core.TagSet) }
func (*SetOf) TypeName() string { return "SET OF" }
func (*SetOf) sealed() {}
func (t *SetOf) Element() Type { return t.element }

type Choice struct {
	alternatives []Component
	extensible   bool
}

func NewChoice(extensible bool, alternatives ...Component) *Choice {
	return &Choice{alternatives: alternatives, extensible: extensible}
}

func (t *Choice) Tags() []asn1core.Tag {
	var tags []asn1core.Tag
	for _, alt := range t.alternatives {
		tags = append(tags, alt.Type.Tags()...)
	}
	return tags
}
func (*Choice) TypeName() string { return "CHOICE" }
func (*Choice) sealed() {}

func (t *Choice) Alternatives() []Component { return t.alternatives }
func (t *Choice) Extensible() bool { return t.extensible }

func (t *Choice) Alternative(name string) (Component, bool) {
	for _, alt := range t.alternatives {
		if alt.Name == name {
			return alt, true
		}
	}
	return Component{}, false
}

// Tagged replaces (implicit) or wraps (explicit) the tag of its inner type.
type Tagged struct {
	tag      asn1core.Tag
	explicit bool
	inner    Type
}

func NewTagged(tag asn1core.Tag, explicit bool, inner Type) *Tagged {
	return &Tagged{tag: tag.Key(), explicit: explicit, inner: inner}
}

func NewExplicit(tag asn1core.Tag, inner Type) *Tagged {
	return NewTagged(tag, true, inner)
}

func NewImplicit(tag asn1core.Tag, inner Type) *Tagged {
	return NewTagged(tag, false, inner)
}

func (t *Tagged) Tags() []asn1core.Tag {
	if t.IsExplicit() {
		return []asn1core.Tag{t.tag.WithConstructed(true)}
	}
	inner := t.inner.Tags()
	return []asn1core.Tag{t.tag.WithConstructed(len(inner) > 0 && inner[0].Constructed)}
}
func (t *Tagged) TypeName() string { return t.inner.TypeName() }
func (*Tagged) sealed() {}

func (t *Tagged) Tag() asn1core.Tag { return t.tag }
func (t *Tagged) Inner() Type { return t.inner }

// IsExplicit is true for explicit tags and for any tag on a CHOICE, which
// cannot be tagged implicitly because it has no tag of its own to replace.
func (t *Tagged) IsExplicit() bool {
	if t.explicit {
		return true
	}
	_, isChoice := Deref(t.inner).(*Choice)
	return isChoice
}

type Optional struct {
	inner Type
}

func NewOptional(inner Type) *Optional {
	return &Optional{inner: inner}
}

func (t *Optional) Tags() []asn1core.Tag { return t.inner.Tags() }
func (t *Optional) TypeName() string { return t.inner.TypeName() }
func (*Optional) sealed() {}
func (t *Optional) Inner() Type { return t.inner }

type Default struct {
	inner Type
	value any
}

func NewDefault(inner Type, value any) *Default {
	return &Default{inner: inner, value: value}
}

func (t *Default) Tags() []asn1core.Tag { return t.inner.Tags() }
func (t *Default) TypeName() string { return t.inner.TypeName() }
func (*Default) sealed() {}
func (t *Default) Inner() Type { return t.inner }
func (t *Default) Value() any { return t.value }

type Resolver interface {
	Resolve(name string) (Type, error)
}

type ResolverFunc func(name string) (Type, error)

func (f ResolverFunc) Resolve(name string) (Type, error) {
	return f(name)
}

// Referenced names another type that is looked up on first use. Resolution
// happens once; later calls return the same result.
type Referenced struct {
	name     string
	resolver Resolver

	once     sync.Once
	resolved Type
	err      error
}

func NewReferenced(name string, resolver Resolver) *Referenced {
	return &Referenced{name: name, resolver: resolver}
}

func (t *Referenced) Resolve() (Type, error) {
	t.once.Do(func() {
		t.resolved, t.err = t.resolver.Resolve(t.name)
		if t.err == nil && t.resolved == nil {
			t.err = asn1error.New(asn1error.SchemaViolation, "Unresolved type reference %s", t.name)
		}
	})
	return t.resolved, t.err
}

func (t *Referenced) Tags() []asn1core.Tag {
	resolved, err := t.Resolve()
	if err != nil {
		return nil
	}
	return resolved.Tags()
}
func (t *Referenced) TypeName() string { return t.name }
func (*Referenced) sealed() {}
func (t *Referenced) Name() string { return t.name }
