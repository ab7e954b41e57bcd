package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix selects which environment variables are read.
const DefaultEnvPrefix = "TINYKV_"

// Loader layers configuration sources onto a struct with koanf tags.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	file      string
	dotEnv    []string
	overrides map[string]any
	envKeys   map[string]string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile reads a YAML file. The file must exist.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.file = path }
}

// WithDotEnv reads .env files into the process environment before the
// environment is consulted. Missing files are skipped and variables that
// are already set keep their value.
func WithDotEnv(paths ...string) Option {
	return func(l *Loader) { l.dotEnv = append(l.dotEnv, paths...) }
}

// WithOverrides applies dotted-key values after every other source. It is
// meant for command-line flags.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		if l.overrides == nil {
			l.overrides = make(map[string]any, len(values))
		}
		for k, v := range values {
			l.overrides[k] = v
		}
	}
}

// WithKnownKeys adds dotted keys to the environment mapping. Load already
// adds every key of its target, so this is only needed for LoadEnv.
func WithKnownKeys(keys ...string) Option {
	return func(l *Loader) { l.addKnownKeys(keys) }
}

// NewLoader returns a Loader with no sources loaded yet.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fills target from, in increasing priority, its current field values,
// the config file, .env files and the environment, and the overrides.
func (l *Loader) Load(target any) error {
	l.addKnownKeys(structKeys(target))

	steps := []struct {
		name string
		run  func() error
	}{
		{"config file", func() error { return l.LoadFile(l.file) }},
		{"dotenv", l.loadDotEnv},
		{"environment", l.LoadEnv},
		{"overrides", func() error { return l.LoadMap(l.overrides) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return l.Unmarshal(target)
}

// LoadFile merges a YAML file. An empty path is ignored.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges variables that carry the prefix. TINYKV_SERVER_REDIS_ADDR
// becomes server.redis.addr.
func (l *Loader) LoadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil)
}

// LoadMap merges values with dotted keys. An empty map is ignored.
func (l *Loader) LoadMap(values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return l.k.Load(mapProvider(values), nil)
}

// Unmarshal decodes everything merged so far into target. Fields with no
// merged value keep their current content.
func (l *Loader) Unmarshal(target any) error {
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Get returns the merged value at a dotted key, or nil.
func (l *Loader) Get(key string) any { return l.k.Get(key) }

// envKey maps a variable name to a config key, or "" to skip it. With known
// keys only exact matches are kept, so TINYKV_SERVER (read by the CLI)
// cannot clobber the server section. Without any, every underscore becomes
// a dot.
func (l *Loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	if len(l.envKeys) == 0 {
		return strings.ReplaceAll(name, "_", ".")
	}
	return l.envKeys[name]
}

func (l *Loader) addKnownKeys(keys []string) {
	if l.envKeys == nil {
		l.envKeys = make(map[string]string, len(keys))
	}
	for k, v := range envKeyIndex(keys) {
		l.envKeys[k] = v
	}
}

func (l *Loader) loadDotEnv() error {
	for _, path := range l.dotEnv {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}
