package asn1core

import (
	"fmt"
	"strings"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"golang.org/x/exp/constraints"
)

type mappingPair[T constraints.Integer] struct {
	name string
	val  T
}

// mapping is a case-insensitive two way registry between names and values.
type mapping[T constraints.Integer] struct {
	valMap  map[T]*mappingPair[T]
	nameMap map[string]*mappingPair[T]
}

func (m *mapping[T]) AddAlias(name string, aliases ...string) {
	known, ok := m.nameMap[strings.ToLower(name)]
	if !ok {
		panic(fmt.Sprintf("unknown name %q in alias", name))
	}
	for _, alias := range aliases {
		aliasL := strings.ToLower(alias)
		if _, ok := m.nameMap[aliasL]; ok {
			panic(fmt.Sprintf("duplicate alias %q", alias))
		}
		m.nameMap[aliasL] = known
	}
}

func (m *mapping[T]) Add(name string, val T) {
	nameL := strings.ToLower(name)
	if m.valMap == nil {
		m.valMap = make(map[T]*mappingPair[T])
	}
	if m.nameMap == nil {
		m.nameMap = make(map[string]*mappingPair[T])
	}
	if _, ok := m.valMap[val]; ok {
		panic(fmt.Sprintf("duplicate value %d", val))
	}
	if _, ok := m.nameMap[nameL]; ok {
		panic(fmt.Sprintf("duplicate name %q", name))
	}
	p := &mappingPair[T]{name, val}
	m.valMap[val] = p
	m.nameMap[nameL] = p
}

func (m *mapping[T]) Name(val T) (string, error) {
	p, ok := m.valMap[val]
	if !ok {
		return "", asn1error.NewErrorf("unknown value %d", val)
	}
	return p.name, nil
}

func (m *mapping[T]) Value(name string) (T, error) {
	p, ok := m.nameMap[strings.ToLower(name)]
	if !ok {
		var null T
		return null, asn1error.NewErrorf("unknown name %q", name)
	}
	return p.val, nil
}
