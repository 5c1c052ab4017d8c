// Package config loads pipeline configuration from YAML, validated against
// an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pushopen/internal/delivery"
	"github.com/roach88/pushopen/internal/launch"
	"github.com/roach88/pushopen/internal/payload"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the pipeline configuration.
type Config struct {
	// PackageName is the host process's own identity.
	PackageName string `yaml:"package_name" json:"package_name"`

	// LaunchComponents maps a package to its default entry component.
	LaunchComponents map[string]string `yaml:"launch_components,omitempty" json:"launch_components,omitempty"`

	PayloadKey   string   `yaml:"payload_key,omitempty" json:"payload_key,omitempty"`
	DeepLinkKeys []string `yaml:"deeplink_keys,omitempty" json:"deeplink_keys,omitempty"`
	EventName    string   `yaml:"event_name,omitempty" json:"event_name,omitempty"`
	LogLevel     string   `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// Default returns a usable configuration for a host named com.example.app.
func Default() *Config {
	cfg := &Config{
		PackageName: "com.example.app",
		LaunchComponents: map[string]string{
			"com.example.app": "com.example.app.MainActivity",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads, validates and decodes the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the schema, then decodes it strictly and
// fills in defaults.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrInvalidConfig, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError flattens CUE's error list into one message.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]error, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, errors.New(e.Error()))
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(msgs...))
}

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.PayloadKey == "" {
		c.PayloadKey = payload.DefaultContainerKey
	}
	if len(c.DeepLinkKeys) == 0 {
		c.DeepLinkKeys = []string{payload.DefaultDeepLinkKey}
	}
	if c.EventName == "" {
		c.EventName = delivery.DefaultEventName
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks a config built in code. Parse already calls it.
func (c *Config) Validate() error {
	if c.PackageName == "" {
		return fmt.Errorf("%w: package_name is required", ErrInvalidConfig)
	}
	for i, k := range c.DeepLinkKeys {
		if k == "" {
			return fmt.Errorf("%w: deeplink_keys[%d] is empty", ErrInvalidConfig, i)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Identity returns the host self-identity described by the config.
func (c *Config) Identity() launch.StaticIdentity {
	return launch.StaticIdentity{
		Package:    c.PackageName,
		Components: c.LaunchComponents,
	}
}

// SlogLevel returns LogLevel as a slog.Level. Unknown levels map to Info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, s)
	}
}
