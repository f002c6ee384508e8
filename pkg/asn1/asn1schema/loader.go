package asn1schema

import (
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/davidjspooner/asn1kit/internal/framework"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"gopkg.in/yaml.v3"
)

// moduleDocument is the YAML form of a module:
//
//	module: Example
//	tagging: implicit
//	types:
//	  Message:
//	    type: SEQUENCE
//	    components:
//	      - {name: version, type: INTEGER}
//	      - {name: body, type: Body, tag: "[0]", optional: true}
//
// A type node is either a name (a builtin such as "OCTET STRING", or another
// type of the module) or a mapping with a "type" field and the fields that
// type allows.
type moduleDocument struct {
	Module  string    `yaml:"module"`
	Tagging string    `yaml:"tagging"`
	Types   yaml.Node `yaml:"types"`
}

func LoadModuleFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := LoadModule(f)
	if err != nil {
		return nil, asn1error.NewErrorf("loading %s", path).WithCause(err).WithType(asn1error.TypeOf(err))
	}
	return m, nil
}

// LoadModule reads a YAML module document. All problems found are returned
// together as an asn1error.List.
func LoadModule(r io.Reader) (*Module, error) {
	doc := moduleDocument{}
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&doc); err != nil {
		return nil, asn1error.Wrap(err).WithType(asn1error.SchemaViolation)
	}
	if doc.Module == "" {
		return nil, asn1error.New(asn1error.SchemaViolation, "module name is required")
	}

	tagging := ExplicitTagging
	switch strings.ToUpper(doc.Tagging) {
	case "", "EXPLICIT":
	case "IMPLICIT":
		tagging = ImplicitTagging
	case "AUTOMATIC":
		tagging = AutomaticTagging
	default:
		return nil, asn1error.New(asn1error.SchemaViolation, "unknown tagging %q", doc.Tagging)
	}
	if doc.Types.Kind != yaml.MappingNode {
		return nil, asn1error.New(asn1error.SchemaViolation, "module %s: types must be a mapping", doc.Module)
	}

	l := &loader{
		module: NewModule(doc.Module, tagging),
		refs:   make(map[string]*Referenced),
	}
	var errs asn1error.List
	for i := 0; i+1 < len(doc.Types.Content); i += 2 {
		key, value := doc.Types.Content[i], doc.Types.Content[i+1]
		if err := l.define(key.Value, value); err != nil {
			errs = append(errs, asn1error.NewErrorf("line %d: type %s", key.Line, key.Value).WithCause(err).WithType(asn1error.SchemaViolation))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if err := l.module.Validate(); err != nil {
		return nil, err
	}
	if err := l.finish(); err != nil {
		return nil, err
	}
	return l.module, nil
}

type pendingDefault struct {
	owner   string
	target  *Default
	literal any
}

type loader struct {
	module   *Module
	refs     map[string]*Referenced
	sets     []*Set
	defaults []pendingDefault
	current  string
}

func (l *loader) define(name string, node *yaml.Node) error {
	if err := framework.IsIdentifier(name); err != nil {
		return err
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	l.current = name
	t, err := l.parse(raw, false)
	if err != nil {
		return err
	}
	return l.module.Define(name, t)
}

// finish runs the checks that need every reference to be resolvable.
func (l *loader) finish() error {
	var errs asn1error.List
	for _, set := range l.sets {
		if err := set.checkDistinctTags(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, pending := range l.defaults {
		v, err := defaultValue(pending.target.inner, pending.literal)
		if err == nil {
			err = CheckValue(pending.target.inner, v)
		}
		if err != nil {
			errs = append(errs, asn1error.NewErrorf("type %s: DEFAULT", pending.owner).WithCause(err).WithType(asn1error.SchemaViolation))
			continue
		}
		pending.target.value = v
	}
	return errs.OrNil()
}

func (l *loader) ref(name string) *Referenced {
	ref, ok := l.refs[name]
	if !ok {
		ref = l.module.Ref(name)
		l.refs[name] = ref
	}
	return ref
}

func (l *loader) named(name string) (Type, error) {
	if t, ok := builtinType(name); ok {
		return t, nil
	}
	switch name {
	case "SEQUENCE", "SET", "SEQUENCE OF", "SET OF", "CHOICE", "ENUMERATED":
		return nil, asn1error.New(asn1error.SchemaViolation, "%s needs a definition, not just a name", name)
	}
	if err := framework.IsIdentifier(name); err != nil {
		return nil, asn1error.New(asn1error.SchemaViolation, "unknown type %q", name)
	}
	return l.ref(name), nil
}

// parse builds the type for one node. OPTIONAL and DEFAULT are only allowed
// on components.
func (l *loader) parse(raw any, component bool) (Type, error) {
	switch node := raw.(type) {
	case string:
		return l.named(node)
	case map[string]any:
		return l.parseConfig(framework.Config(node), component)
	}
	return nil, asn1error.New(asn1error.SchemaViolation, "a type must be a name or a mapping, not %T", raw)
}

func (l *loader) parseConfig(cfg framework.Config, component bool) (Type, error) {
	typeName, err := framework.ConsumeArg[string](cfg, "type")
	if err != nil {
		return nil, err
	}
	var t Type
	switch typeName {
	case "SEQUENCE", "SET":
		t, err = l.parseStructure(typeName, cfg)
	case "SEQUENCE OF", "SET OF":
		t, err = l.parseList(typeName, cfg)
	case "CHOICE":
		t, err = l.parseChoice(cfg)
	case "ENUMERATED":
		t, err = parseEnumerated(cfg)
	case "INTEGER":
		t, err = parseInteger(cfg)
	default:
		t, err = l.named(typeName)
	}
	if err != nil {
		return nil, err
	}

	if t, err = l.parseTag(t, cfg); err != nil {
		return nil, err
	}

	if component {
		optional, err := framework.ConsumeOptionalArg(cfg, "optional", false)
		if err != nil {
			return nil, err
		}
		if literal, ok := cfg["default"]; ok {
			delete(cfg, "default")
			if optional {
				return nil, asn1error.New(asn1error.SchemaViolation, "a component cannot be both OPTIONAL and DEFAULT")
			}
			d := NewDefault(t, nil)
			l.defaults = append(l.defaults, pendingDefault{owner: l.current, target: d, literal: literal})
			t = d
		} else if optional {
			t = NewOptional(t)
		}
	}
	if err := framework.CheckFields(cfg); err != nil {
		return nil, err
	}
	return t, nil
}

func (l *loader) parseTag(t Type, cfg framework.Config) (Type, error) {
	if !framework.HasArg(cfg, "tag") {
		return t, nil
	}
	rawTag, err := framework.ConsumeArg[any](cfg, "tag")
	if err != nil {
		return nil, err
	}
	var tag asn1core.Tag
	switch v := rawTag.(type) {
	case int:
		if v < 0 {
			return nil, asn1error.New(asn1error.SchemaViolation, "invalid tag %d", v)
		}
		tag = asn1core.New(asn1core.ClassContextSpecific, uint32(v))
	case string:
		if tag, err = asn1core.ParseTag(v); err != nil {
			return nil, err
		}
	default:
		return nil, asn1error.New(asn1error.SchemaViolation, "invalid tag %v", rawTag)
	}

	explicit, err := framework.ConsumeOptionalArg(cfg, "explicit", false)
	if err != nil {
		return nil, err
	}
	implicit, err := framework.ConsumeOptionalArg(cfg, "implicit", false)
	if err != nil {
		return nil, err
	}
	if explicit && implicit {
		return nil, asn1error.New(asn1error.SchemaViolation, "tag %s cannot be both EXPLICIT and IMPLICIT", tag)
	}
	if !explicit && !implicit {
		explicit = l.module.tagging == ExplicitTagging
	}
	return NewTagged(tag, explicit, t), nil
}

func (l *loader) parseComponents(cfg framework.Config, field string) ([]Component, error) {
	items, err := framework.ConsumeArg[[]any](cfg, field)
	if err != nil {
		return nil, err
	}
	automatic := l.module.tagging == AutomaticTagging
	for _, item := range items {
		if m, ok := item.(map[string]any); ok && framework.HasArg(framework.Config(m), "tag") {
			automatic = false
		}
	}
	components := make([]Component, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, asn1error.New(asn1error.SchemaViolation, "%s entry %d must be a mapping", field, i)
		}
		itemCfg := framework.Config(m)
		name, err := framework.ConsumeArg[string](itemCfg, "name")
		if err != nil {
			return nil, asn1error.NewErrorf("%s entry %d", field, i).WithCause(err).WithType(asn1error.SchemaViolation)
		}
		if err := framework.IsIdentifier(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, asn1error.New(asn1error.SchemaViolation, "duplicate component %s", name)
		}
		seen[name] = true
		if automatic {
			itemCfg["tag"] = i
			itemCfg["implicit"] = true
		}
		t, err := l.parseConfig(itemCfg, field == "components")
		if err != nil {
			return nil, asn1error.NewErrorf("component %s", name).WithCause(err).WithType(asn1error.SchemaViolation)
		}
		components = append(components, Component{Name: name, Type: t})
	}
	return components, nil
}

func (l *loader) parseStructure(typeName string, cfg framework.Config) (Type, error) {
	extensible, err := framework.ConsumeOptionalArg(cfg, "extensible", false)
	if err != nil {
		return nil, err
	}
	components, err := l.parseComponents(cfg, "components")
	if err != nil {
		return nil, err
	}
	if typeName == "SEQUENCE" {
		return NewSequence(extensible, components...), nil
	}
	set := &Set{components: components, extensible: extensible}
	l.sets = append(l.sets, set)
	return set, nil
}

func (l *loader) parseChoice(cfg framework.Config) (Type, error) {
	extensible, err := framework.ConsumeOptionalArg(cfg, "extensible", false)
	if err != nil {
		return nil, err
	}
	alternatives, err := l.parseComponents(cfg, "alternatives")
	if err != nil {
		return nil, err
	}
	return NewChoice(extensible, alternatives...), nil
}

func (l *loader) parseList(typeName string, cfg framework.Config) (Type, error) {
	rawElement, err := framework.ConsumeArg[any](cfg, "of")
	if err != nil {
		return nil, err
	}
	element, err := l.parse(rawElement, false)
	if err != nil {
		return nil, err
	}
	if typeName == "SEQUENCE OF" {
		return NewSequenceOf(element), nil
	}
	return NewSetOf(element), nil
}

func parseInteger(cfg framework.Config) (Type, error) {
	t := &Integer{}
	for _, bound := range []struct {
		field string
		dst   **int64
	}{{"min", &t.Min}, {"max", &t.Max}} {
		if !framework.HasArg(cfg, bound.field) {
			continue
		}
		n, err := framework.ConsumeArg[int64](cfg, bound.field)
		if err != nil {
			return nil, err
		}
		*bound.dst = &n
	}
	if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
		return nil, asn1error.New(asn1error.SchemaViolation, "INTEGER range %d..%d is empty", *t.Min, *t.Max)
	}
	return t, nil
}

// parseEnumerated accepts either a mapping of names to values or a list of
// names numbered from zero.
func parseEnumerated(cfg framework.Config) (Type, error) {
	extensible, err := framework.ConsumeOptionalArg(cfg, "extensible", false)
	if err != nil {
		return nil, err
	}
	rawItems, err := framework.ConsumeArg[any](cfg, "items")
	if err != nil {
		return nil, err
	}
	var items []EnumItem
	switch v := rawItems.(type) {
	case map[string]any:
		for name, value := range v {
			n, ok := value.(int)
			if !ok {
				return nil, asn1error.New(asn1error.SchemaViolation, "enumeration %s needs an integer value", name)
			}
			items = append(items, EnumItem{Name: name, Value: int64(n)})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Value < items[j].Value })
	case []any:
		for i, name := range v {
			s, ok := name.(string)
			if !ok {
				return nil, asn1error.New(asn1error.SchemaViolation, "enumeration entry %d must be a name", i)
			}
			items = append(items, EnumItem{Name: s, Value: int64(i)})
		}
	default:
		return nil, asn1error.New(asn1error.SchemaViolation, "items must be a mapping or a list")
	}
	for _, item := range items {
		if err := framework.IsIdentifier(item.Name); err != nil {
			return nil, err
		}
	}
	return NewEnumerated(extensible, items...)
}

func builtinType(name string) (Type, bool) {
	switch name {
	case "BOOLEAN":
		return &Boolean{}, true
	case "INTEGER":
		return &Integer{}, true
	case "BIT STRING":
		return &BitString{}, true
	case "OCTET STRING":
		return &OctetString{}, true
	case "NULL":
		return &Null{}, true
	case "OBJECT IDENTIFIER":
		return &ObjectIdentifier{}, true
	case "RELATIVE-OID":
		return &RelativeOID{}, true
	case "REAL":
		return &Real{}, true
	case "UTCTime":
		return &UTCTime{}, true
	case "GeneralizedTime":
		return &GeneralizedTime{}, true
	case "EXTERNAL":
		return &External{}, true
	case "EMBEDDED PDV":
		return &EmbeddedPDV{}, true
	}
	for kind := asn1core.NumericString; kind <= asn1core.ObjectDescriptor; kind++ {
		if kind.String() == name {
			return NewString(kind), true
		}
	}
	return nil, false
}

// defaultValue converts a YAML literal to the value shape of t.
func defaultValue(t Type, literal any) (any, error) {
	base := BaseType(t)
	switch base.(type) {
	case *Boolean, *String, *Enumerated:
		return literal, nil
	case *Integer:
		if n, ok := literal.(int); ok {
			return int64(n), nil
		}
	case *Real:
		switch v := literal.(type) {
		case int:
			return float64(v), nil
		case float64:
			return v, nil
		}
	case *Null:
		if literal == nil {
			return asn1go.Null{}, nil
		}
	case *OctetString:
		if s, ok := literal.(string); ok {
			b, err := hex.DecodeString(s)
			if err != nil {
				return nil, asn1error.New(asn1error.SchemaViolation, "invalid hex default %q", s)
			}
			return b, nil
		}
	case *BitString:
		if s, ok := literal.(string); ok {
			return asn1go.NewBitString(s)
		}
	case *ObjectIdentifier:
		if s, ok := literal.(string); ok {
			return asn1go.ParseOID(s)
		}
	default:
		return nil, asn1error.New(asn1error.Unsupported, "DEFAULT is not supported for %s", base.TypeName())
	}
	return nil, asn1error.New(asn1error.SchemaViolation, "invalid DEFAULT %v for %s", literal, base.TypeName())
}
