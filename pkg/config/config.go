// Package config loads stackflex settings from TOML or YAML files.
//
// A config file mirrors the CLI flags. Values left out fall back to the
// built-in defaults; flags given on the command line override the file.
//
//	[layout]
//	algorithm = "flexbox"
//	algo = "yoga-layout"
//	width = 1024
//	height = 768
//	delimiter = "/"
//
//	[layout.defaults]
//	alignItems = "center"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
// [Loader] keeps the current file contents and reloads them when the file
// changes on disk.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
	"github.com/matzehuels/stackflex/pkg/pipeline"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults for sections outside the layout options.
const (
	DefaultAddr      = ":8080"
	DefaultCacheTTL  = 7 * 24 * time.Hour
	DefaultMaxBody   = 4 << 20
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
	DefaultAlgorithm = layout.AlgorithmFlexbox
)

// File is the parsed config file.
type File struct {
	Layout Layout `toml:"layout" yaml:"layout"`
	Cache  Cache  `toml:"cache" yaml:"cache"`
	Server Server `toml:"server" yaml:"server"`
	Log    Log    `toml:"log" yaml:"log"`
}

// Layout holds engine options.
type Layout struct {
	Algorithm      string         `toml:"algorithm" yaml:"algorithm"`
	Algo           string         `toml:"algo" yaml:"algo"`
	Width          float64        `toml:"width" yaml:"width"`
	Height         float64        `toml:"height" yaml:"height"`
	Delimiter      string         `toml:"delimiter" yaml:"delimiter"`
	Defaults       map[string]any `toml:"defaults" yaml:"defaults"`
	BaseLength     float64        `toml:"base_length" yaml:"base_length"`
	LengthStrategy string         `toml:"length_strategy" yaml:"length_strategy"`
	Iterations     int            `toml:"iterations" yaml:"iterations"`
	Seed           uint64         `toml:"seed" yaml:"seed"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend  string   `toml:"backend" yaml:"backend"`
	Dir      string   `toml:"dir" yaml:"dir"`
	RedisURL string   `toml:"redis_url" yaml:"redis_url"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	Timeout      Duration `toml:"timeout" yaml:"timeout"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct{ time.Duration }

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOption, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Load reads path. Files ending in .yaml or .yml are YAML, everything else
// TOML. Defaults are applied and the result validated.
func Load(path string) (*File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".toml", ".yaml", ".yml").
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse yaml config")
		}
	default:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse toml config")
		}
	}
	f.SetDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Default returns a config with every default applied.
func Default() *File {
	var f File
	f.SetDefaults()
	return &f
}

// SetDefaults fills zero-valued fields.
func (f *File) SetDefaults() {
	if f.Layout.Algorithm == "" {
		f.Layout.Algorithm = DefaultAlgorithm
	}
	if f.Layout.Algo == "" {
		f.Layout.Algo = layout.DefaultAlgo
	}
	if f.Layout.Width == 0 {
		f.Layout.Width = layout.DefaultWidth
	}
	if f.Layout.Height == 0 {
		f.Layout.Height = layout.DefaultHeight
	}
	if f.Layout.Delimiter == "" {
		f.Layout.Delimiter = address.DefaultSep
	}
	if f.Layout.BaseLength == 0 {
		f.Layout.BaseLength = layout.DefaultBaseLength
	}
	if f.Layout.LengthStrategy == "" {
		f.Layout.LengthStrategy = layout.DefaultLengthStrategy
	}
	if f.Layout.Iterations == 0 {
		f.Layout.Iterations = layout.DefaultIterations
	}
	if f.Layout.Seed == 0 {
		f.Layout.Seed = layout.DefaultSeed
	}
	if f.Cache.Backend == "" {
		f.Cache.Backend = CacheFile
	}
	if f.Cache.TTL.Duration == 0 {
		f.Cache.TTL.Duration = DefaultCacheTTL
	}
	if f.Server.Addr == "" {
		f.Server.Addr = DefaultAddr
	}
	if f.Server.MaxBodyBytes == 0 {
		f.Server.MaxBodyBytes = DefaultMaxBody
	}
	if f.Server.Timeout.Duration == 0 {
		f.Server.Timeout.Duration = DefaultTimeout
	}
	if f.Log.Level == "" {
		f.Log.Level = DefaultLogLevel
	}
}

// Validate checks values after defaults are applied.
func (f *File) Validate() error {
	switch f.Layout.Algorithm {
	case layout.AlgorithmFlexbox, layout.AlgorithmForce:
	default:
		return errors.New(errors.ErrCodeInvalidAlgorithm,
			"invalid algorithm: %q (must be one of: %s, %s)", f.Layout.Algorithm, layout.AlgorithmFlexbox, layout.AlgorithmForce)
	}
	if err := errors.ValidateDelimiter(f.Layout.Delimiter); err != nil {
		return err
	}
	opts := f.LayoutOptions()
	if err := opts.Validate(); err != nil {
		return err
	}
	switch f.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if err := errors.ValidateRedisURL(f.Cache.RedisURL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidOption, "invalid cache backend: %q (must be one of: file, redis, none)", f.Cache.Backend)
	}
	if _, err := log.ParseLevel(f.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOption, err, "invalid log level: %q", f.Log.Level)
	}
	if f.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max_body_bytes must not be negative")
	}
	return nil
}

// LayoutOptions converts the layout section into engine options.
func (f *File) LayoutOptions() layout.Options {
	l := f.Layout
	return layout.Options{
		Width:          l.Width,
		Height:         l.Height,
		Algo:           l.Algo,
		Codec:          address.Delimited{Sep: l.Delimiter},
		Defaults:       layout.AttrsOf(l.Defaults),
		BaseLength:     l.BaseLength,
		LengthStrategy: l.LengthStrategy,
		Iterations:     l.Iterations,
		Seed:           l.Seed,
	}
}

// PipelineOptions converts the layout section into pipeline options.
func (f *File) PipelineOptions() pipeline.Options {
	l := f.Layout
	return pipeline.Options{
		Algorithm:      l.Algorithm,
		Width:          l.Width,
		Height:         l.Height,
		Algo:           l.Algo,
		Delimiter:      l.Delimiter,
		Defaults:       l.Defaults,
		BaseLength:     l.BaseLength,
		LengthStrategy: l.LengthStrategy,
		Iterations:     l.Iterations,
		Seed:           l.Seed,
	}
}

// LogLevel returns the configured log level.
func (f *File) LogLevel() log.Level {
	level, err := log.ParseLevel(f.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
