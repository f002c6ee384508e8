package framework

import (
	"fmt"
	"sort"
)

// Plugin is one named entry of a PluginMap, built from a Config by the map's
// Factory.
type Plugin[T any] struct {
	Name string
	Kind string
	Impl T
}

type Required int

const (
	RequireName Required = 1 << iota
	SupportName
	RequireKind
	SupportKind
)

type PluginMap[T any] struct {
	plugins map[string]*Plugin[T]
	Class   string
	Factory func(kind string, spec Config) (T, error)
	Require Required
}

func (pm *PluginMap[T]) Load(spec Config) error {
	if pm.plugins == nil {
		pm.plugins = make(map[string]*Plugin[T], 1)
	}

	var err error
	var name, kind string

	if pm.Require&RequireName != 0 {
		name, err = ConsumeArg[string](spec, "name")
		if err != nil {
			return err
		}
	} else if pm.Require&SupportName != 0 {
		name, err = ConsumeOptionalArg[string](spec, "name", "")
		if err != nil {
			return err
		}
	}
	if name == "" {
		name = fmt.Sprintf("#%d", len(pm.plugins)+1)
	}
	if _, ok := pm.plugins[name]; ok {
		return fmt.Errorf("%s %s already registered", pm.Class, name)
	}
	if pm.Require&RequireKind != 0 {
		kind, err = ConsumeArg[string](spec, "kind")
		if err != nil {
			return err
		}
	} else if pm.Require&SupportKind != 0 {
		kind, err = ConsumeOptionalArg[string](spec, "kind", "default")
		if err != nil {
			return err
		}
	}

	impl, err := pm.Factory(kind, spec)
	if err != nil {
		return fmt.Errorf("failed to create %s %s : %w", pm.Class, name, err)
	}

	pm.plugins[name] = &Plugin[T]{
		Name: name,
		Kind: kind,
		Impl: impl,
	}

	return nil
}

func (pm *PluginMap[T]) LoadAll(specs []Config) error {
	for _, spec := range specs {
		if err := pm.Load(spec); err != nil {
			return err
		}
	}
	return nil
}

func (pm *PluginMap[T]) Find(name string) (*Plugin[T], error) {
	if pm.plugins == nil {
		return nil, fmt.Errorf("no %s registered", pm.Class)
	}
	if p, ok := pm.plugins[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no %s named %s", pm.Class, name)
}

// ForEach visits plugins in name order.
func (pm *PluginMap[T]) ForEach(fn func(string, *Plugin[T]) error) error {
	for _, name := range pm.Names() {
		if err := fn(name, pm.plugins[name]); err != nil {
			return err
		}
	}
	return nil
}

func (pm *PluginMap[T]) Names() []string {
	names := make([]string, 0, len(pm.plugins))
	for name := range pm.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pm *PluginMap[T]) Count() int {
	return len(pm.plugins)
}
