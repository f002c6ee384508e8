package asn1schema

import (
	"sort"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

// Tagging is the default applied to tags that say neither explicit nor
// implicit.
type Tagging int

const (
	ExplicitTagging Tagging = iota
	ImplicitTagging
	AutomaticTagging
)

func (t Tagging) String() string {
	switch t {
	case ImplicitTagging:
		return "IMPLICIT"
	case AutomaticTagging:
		return "AUTOMATIC"
	}
	return "EXPLICIT"
}

// Module is a named collection of type assignments. It is the Resolver for
// the references between them.
type Module struct {
	name    string
	tagging Tagging
	types   map[string]Type
}

func NewModule(name string, tagging Tagging) *Module {
	return &Module{name: name, tagging: tagging, types: make(map[string]Type)}
}

func (m *Module) Name() string     { return m.name }
func (m *Module) Tagging() Tagging { return m.tagging }
func (m *Module) Len() int         { return len(m.types) }

// Define adds a type assignment. Names are unique within a module.
func (m *Module) Define(name string, t Type) error {
	if _, ok := m.types[name]; ok {
		return asn1error.New(asn1error.SchemaViolation, "Type %s defined twice in module %s", name, m.name)
	}
	m.types[name] = t
	return nil
}

func (m *Module) Lookup(name string) (Type, bool) {
	t, ok := m.types[name]
	return t, ok
}

func (m *Module) Resolve(name string) (Type, error) {
	if t, ok := m.types[name]; ok {
		return t, nil
	}
	return nil, asn1error.New(asn1error.SchemaViolation, "Unknown type %s in module %s", name, m.name)
}

// Ref returns a reference to name that resolves through m on first use.
func (m *Module) Ref(name string) *Referenced {
	return NewReferenced(name, m)
}

// Names lists the defined types alphabetically.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate resolves every reference reachable from the module's types and
// rejects definitions whose tag depends on themselves, eg A ::= B, B ::= A,
// which would otherwise recurse forever when computing tags.
func (m *Module) Validate() error {
	var errs asn1error.List
	for _, name := range m.Names() {
		if err := checkReferences(m.types[name], map[Type]bool{}); err != nil {
			errs = append(errs, asn1error.NewErrorf("type %s", name).WithCause(err).WithType(asn1error.TypeOf(err)))
			continue
		}
		if err := checkTagCycle(m.types[name], map[*Referenced]bool{}); err != nil {
			errs = append(errs, asn1error.NewErrorf("type %s", name).WithCause(err).WithType(asn1error.TypeOf(err)))
		}
	}
	return errs.OrNil()
}

func checkReferences(t Type, seen map[Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true
	switch t := t.(type) {
	case *Referenced:
		resolved, err := t.Resolve()
		if err != nil {
			return err
		}
		return checkReferences(resolved, seen)
	case *Tagged:
		return checkReferences(t.inner, seen)
	case *Optional:
		return checkReferences(t.inner, seen)
	case *Default:
		return checkReferences(t.inner, seen)
	case *SequenceOf:
		return checkReferences(t.element, seen)
	case *SetOf:
		return checkReferences(t.element, seen)
	case *Sequence:
		return checkComponents(t.components, seen)
	case *Set:
		return checkComponents(t.components, seen)
	case *Choice:
		return checkComponents(t.alternatives, seen)
	}
	return nil
}

func checkComponents(components []Component, seen map[Type]bool) error {
	for _, c := range components {
		if err := checkReferences(c.Type, seen); err != nil {
			return err
		}
	}
	return nil
}

// checkTagCycle follows only the edges that Tags() follows.
func checkTagCycle(t Type, visiting map[*Referenced]bool) error {
	switch t := t.(type) {
	case *Referenced:
		if visiting[t] {
			return asn1error.New(asn1error.SchemaViolation, "Recursive definition of %s has no tag of its own", t.name)
		}
		visiting[t] = true
		defer delete(visiting, t)
		resolved, err := t.Resolve()
		if err != nil {
			return err
		}
		return checkTagCycle(resolved, visiting)
	case *Optional:
		return checkTagCycle(t.inner, visiting)
	case *Default:
		return checkTagCycle(t.inner, visiting)
	case *Tagged:
		if t.explicit {
			return nil
		}
		inner, err := derefChecked(t.inner, map[*Referenced]bool{})
		if err != nil {
			return err
		}
		if _, isChoice := inner.(*Choice); isChoice {
			return nil
		}
		return checkTagCycle(t.inner, visiting)
	case *Choice:
		for _, alt := range t.alternatives {
			if err := checkTagCycle(alt.Type, visiting); err != nil {
				return err
			}
		}
	}
	return nil
}

// derefChecked is Deref for types that have not been validated yet.
func derefChecked(t Type, seen map[*Referenced]bool) (Type, error) {
	for {
		ref, ok := t.(*Referenced)
		if !ok {
			return t, nil
		}
		if seen[ref] {
			return nil, asn1error.New(asn1error.SchemaViolation, "Recursive definition of %s has no tag of its own", ref.name)
		}
		seen[ref] = true
		resolved, err := ref.Resolve()
		if err != nil {
			return nil, err
		}
		t = resolved
	}
}
