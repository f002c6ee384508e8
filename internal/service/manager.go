package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/davidjspooner/asn1kit/internal/framework"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
	"github.com/davidjspooner/asn1kit/pkg/snmp"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen       string             `yaml:"listen"`
	LogLevel     string             `yaml:"log_level"`
	MaxBodyBytes int64              `yaml:"max_body_bytes"`
	ReadTimeout  string             `yaml:"read_timeout"`
	Schemas      []framework.Config `yaml:"schemas"`
}

// Settings is Config after defaults and parsing.
type Settings struct {
	Listen       string
	LogLevel     slog.Level
	MaxBodyBytes int64
	ReadTimeout  time.Duration
}

var ErrUnknownType = errors.New("unknown type")

type TypeInfo struct {
	Module   string `json:"module"`
	Name     string `json:"name"`
	TypeName string `json:"type"`
}

// Manager holds the schema modules the service encodes and decodes with.
// ReloadConfig swaps them atomically.
type Manager struct {
	lock     sync.RWMutex
	settings Settings
	modules  *framework.PluginMap[*asn1schema.Module]
}

func NewManager() *Manager {
	return &Manager{
		modules: newModuleMap(""),
	}
}

func newModuleMap(baseDir string) *framework.PluginMap[*asn1schema.Module] {
	return &framework.PluginMap[*asn1schema.Module]{
		Class: "schema",
		Factory: func(kind string, spec framework.Config) (*asn1schema.Module, error) {
			return newModule(baseDir, kind, spec)
		},
		Require: framework.RequireName | framework.SupportKind,
	}
}

// newModule builds a schema module. kind "file" (the default) loads a YAML
// module document from path; kind "snmp" is the built in SNMPv2 module.
func newModule(baseDir, kind string, spec framework.Config) (*asn1schema.Module, error) {
	switch kind {
	case "default", "file":
		path, err := framework.ConsumeArg[string](spec, "path")
		if err != nil {
			return nil, err
		}
		if err := framework.CheckFields(spec); err != nil {
			return nil, err
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return asn1schema.LoadModuleFile(path)
	case "snmp":
		if err := framework.CheckFields(spec); err != nil {
			return nil, err
		}
		return snmp.Schema()
	}
	return nil, fmt.Errorf("unknown schema kind %q", kind)
}

func (m *Manager) ReloadConfig(ctx context.Context, configPath string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.LoadConfig(ctx, f, filepath.Dir(configPath))
}

// LoadConfig reads a YAML config from r. Relative schema paths are taken
// from baseDir.
func (m *Manager) LoadConfig(ctx context.Context, r io.Reader, baseDir string) error {
	config := Config{}
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	err := d.Decode(&config)
	if err != nil && err != io.EOF {
		return err
	}

	settings := Settings{
		Listen:       config.Listen,
		MaxBodyBytes: config.MaxBodyBytes,
	}
	if settings.Listen == "" {
		settings.Listen = ":8001"
	}
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = 1 << 20
	}
	if settings.LogLevel, err = logevent.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("could not parse log level: %w", err)
	}
	if config.ReadTimeout == "" {
		config.ReadTimeout = "30s"
	}
	if settings.ReadTimeout, err = time.ParseDuration(config.ReadTimeout); err != nil {
		return fmt.Errorf("could not parse read timeout: %w", err)
	}

	if len(config.Schemas) == 0 {
		config.Schemas = []framework.Config{{"name": "snmp", "kind": "snmp"}}
	}
	modules := newModuleMap(baseDir)
	if err := modules.LoadAll(config.Schemas); err != nil {
		return err
	}

	m.lock.Lock()
	m.settings = settings
	m.modules = modules
	m.lock.Unlock()

	logevent.LoggerFromContext(ctx).Info("loaded config", logevent.EventAttrKey, "config.loaded", "schemas", modules.Count())
	return nil
}

func (m *Manager) Settings() Settings {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.settings
}

// Lookup finds a type by the name its module was registered under.
func (m *Manager) Lookup(module, name string) (asn1schema.Type, error) {
	m.lock.RLock()
	modules := m.modules
	m.lock.RUnlock()
	p, err := modules.Find(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, err)
	}
	t, ok := p.Impl.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: no type %s in schema %s", ErrUnknownType, name, module)
	}
	return t, nil
}

func (m *Manager) Types() []TypeInfo {
	m.lock.RLock()
	modules := m.modules
	m.lock.RUnlock()
	var types []TypeInfo
	modules.ForEach(func(name string, p *framework.Plugin[*asn1schema.Module]) error {
		for _, typeName := range p.Impl.Names() {
			t, _ := p.Impl.Lookup(typeName)
			types = append(types, TypeInfo{Module: name, Name: typeName, TypeName: t.TypeName()})
		}
		return nil
	})
	return types
}
