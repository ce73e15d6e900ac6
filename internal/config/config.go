package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/logging"
	"github.com/danmuck/serialforce/internal/object"
)

// Config is the sfctl runtime configuration.
type Config struct {
	LogLevel         string
	Addr             string
	CorsOrigins      []string
	MaxEnvelopeBytes int
	ExtraTypes       []string
}

// sfctl.toml key mapping to Config.
type fileConfig struct {
	LogLevel         string   `toml:"log_level"`
	Addr             string   `toml:"addr"`
	CorsOrigins      []string `toml:"cors_origins"`
	MaxEnvelopeBytes int      `toml:"max_envelope_bytes"`
	ExtraTypes       []string `toml:"extra_types"`
}

func Default() Config {
	return Config{
		LogLevel:         "info",
		Addr:             ":9300",
		CorsOrigins:      []string{"http://localhost:3000"},
		MaxEnvelopeBytes: envelope.DefaultLimits().MaxEnvelopeBytes,
	}
}

// Load reads a TOML file and overlays the keys it defines on Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = trimAll(raw.CorsOrigins)
	}
	if meta.IsDefined("max_envelope_bytes") {
		cfg.MaxEnvelopeBytes = raw.MaxEnvelopeBytes
	}
	if meta.IsDefined("extra_types") {
		cfg.ExtraTypes = trimAll(raw.ExtraTypes)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("config invalid log_level %q", cfg.LogLevel)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if cfg.MaxEnvelopeBytes < 0 {
		return fmt.Errorf("config max_envelope_bytes must not be negative")
	}
	if cfg.MaxEnvelopeBytes > 0 && cfg.MaxEnvelopeBytes < envelope.HeaderLen {
		return fmt.Errorf("config max_envelope_bytes smaller than an envelope header (%d)", envelope.HeaderLen)
	}
	for i, name := range cfg.ExtraTypes {
		if name == "" {
			return fmt.Errorf("extra_types[%d] is empty", i)
		}
	}
	return nil
}

// Limits returns the envelope limits described by cfg.
func (c Config) Limits() envelope.Limits {
	return envelope.Limits{MaxEnvelopeBytes: c.MaxEnvelopeBytes}
}

// Resolver returns the built-in resolver extended with ExtraTypes.
func (c Config) Resolver() *object.TypeResolver {
	r := object.NewTypeResolver()
	for _, name := range c.ExtraTypes {
		r.Register(name)
	}
	return r
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
