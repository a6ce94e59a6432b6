package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-shader-export/export"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHADER_EXPORT_"

// Config holds shaderexport settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
	Catalog CatalogConfig `yaml:"catalog"`
	Preview PreviewConfig `yaml:"preview"`
	Batch   BatchConfig   `yaml:"batch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	BasePath     string `yaml:"base_path"`
	Title        string `yaml:"title"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ExportConfig holds exporter settings.
type ExportConfig struct {
	DefaultFormat string        `yaml:"default_format"`
	UnknownFormat string        `yaml:"unknown_format"`
	OutputDir     string        `yaml:"output_dir"`
	HistoryLimit  int           `yaml:"history_limit"`
	Retention     time.Duration `yaml:"retention"`
}

// Policy returns the unknown format policy.
func (e ExportConfig) Policy() export.UnknownFormatPolicy {
	return export.UnknownFormatPolicy(strings.ToLower(strings.TrimSpace(e.UnknownFormat)))
}

// CatalogConfig selects where shaders come from. Empty values use the
// built-in catalog and embedded sources.
type CatalogConfig struct {
	SeedFile  string `yaml:"seed_file"`
	Database  string `yaml:"database"`
	ShaderDir string `yaml:"shader_dir"`
}

// PreviewConfig holds thumbnail settings.
type PreviewConfig struct {
	Enabled      bool          `yaml:"enabled"`
	ChromiumPath string        `yaml:"chromium_path"`
	Headless     bool          `yaml:"headless"`
	Args         []string      `yaml:"args"`
	Viewport     string        `yaml:"viewport"`
	Settle       time.Duration `yaml:"settle"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheSize    int           `yaml:"cache_size"`
}

// BatchConfig bounds batch exports.
type BatchConfig struct {
	MaxItems    int           `yaml:"max_items"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			BasePath:     "/gallery",
			Title:        "Shader Gallery",
			MaxBodyBytes: 1 << 20,
		},
		Export: ExportConfig{
			DefaultFormat: string(export.DefaultFormat),
			UnknownFormat: string(export.UnknownFormatFallback),
			OutputDir:     "./downloads",
			HistoryLimit:  export.DefaultHistoryLimit,
		},
		Preview: PreviewConfig{
			Headless:  true,
			Viewport:  "640x360",
			Settle:    750 * time.Millisecond,
			Timeout:   30 * time.Second,
			CacheSize: 64,
		},
		Batch: BatchConfig{
			MaxItems: 100,
		},
	}
}

// Decode reads YAML from r on top of the defaults. Unknown keys are errors.
func Decode(r io.Reader) (Config, error) {
	cfg := Defaults()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, export.NewError(export.KindValidation, "invalid config file", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML config file on top of the defaults.
func LoadFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, export.NewError(export.KindNotFound, fmt.Sprintf("config file %q not found", path), err)
		}
		return Config{}, err
	}
	defer file.Close()
	return Decode(file)
}

// Load builds the effective config: defaults, then the optional file, then
// environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from SHADER_EXPORT_* variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if cfg == nil || getenv == nil {
		return nil
	}
	lookup := func(name string) (string, bool) {
		value := strings.TrimSpace(getenv(EnvPrefix + name))
		return value, value != ""
	}

	strs := map[string]*string{
		"HOST":           &cfg.Server.Host,
		"PORT":           &cfg.Server.Port,
		"BASE_PATH":      &cfg.Server.BasePath,
		"TITLE":          &cfg.Server.Title,
		"DEFAULT_FORMAT": &cfg.Export.DefaultFormat,
		"UNKNOWN_FORMAT": &cfg.Export.UnknownFormat,
		"OUTPUT_DIR":     &cfg.Export.OutputDir,
		"SEED_FILE":      &cfg.Catalog.SeedFile,
		"DATABASE":       &cfg.Catalog.Database,
		"SHADER_DIR":     &cfg.Catalog.ShaderDir,
		"CHROMIUM_PATH":  &cfg.Preview.ChromiumPath,
		"VIEWPORT":       &cfg.Preview.Viewport,
	}
	for name, target := range strs {
		if value, ok := lookup(name); ok {
			*target = value
		}
	}

	ints := map[string]*int{
		"HISTORY_LIMIT":      &cfg.Export.HistoryLimit,
		"PREVIEW_CACHE_SIZE": &cfg.Preview.CacheSize,
		"BATCH_MAX_ITEMS":    &cfg.Batch.MaxItems,
	}
	for name, target := range ints {
		if value, ok := lookup(name); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return envError(name, err)
			}
			*target = parsed
		}
	}

	durations := map[string]*time.Duration{
		"RETENTION":          &cfg.Export.Retention,
		"PREVIEW_SETTLE":     &cfg.Preview.Settle,
		"PREVIEW_TIMEOUT":    &cfg.Preview.Timeout,
		"BATCH_MIN_INTERVAL": &cfg.Batch.MinInterval,
	}
	for name, target := range durations {
		if value, ok := lookup(name); ok {
			parsed, err := time.ParseDuration(value)
			if err != nil {
				return envError(name, err)
			}
			*target = parsed
		}
	}

	bools := map[string]*bool{
		"PREVIEW_ENABLED":  &cfg.Preview.Enabled,
		"PREVIEW_HEADLESS": &cfg.Preview.Headless,
	}
	for name, target := range bools {
		if value, ok := lookup(name); ok {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return envError(name, err)
			}
			*target = parsed
		}
	}

	if value, ok := lookup("MAX_BODY_BYTES"); ok {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return envError("MAX_BODY_BYTES", err)
		}
		cfg.Server.MaxBodyBytes = parsed
	}
	if value, ok := lookup("PREVIEW_ARGS"); ok {
		cfg.Preview.Args = splitCSV(value)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Export.Policy() {
	case export.UnknownFormatFallback, export.UnknownFormatReject:
	default:
		return export.NewError(export.KindValidation, fmt.Sprintf("unknown_format must be fallback or reject, got %q", c.Export.UnknownFormat), nil)
	}
	if format := export.NormalizeFormat(export.Format(c.Export.DefaultFormat)); format != "" {
		if _, ok := export.NewDefaultRegistry().Resolve(format); !ok {
			return export.NewError(export.KindValidation, fmt.Sprintf("default_format %q is not a registered export format", c.Export.DefaultFormat), nil)
		}
	}
	if c.Export.HistoryLimit < 0 {
		return export.NewError(export.KindValidation, "history_limit must not be negative", nil)
	}
	if c.Export.Retention < 0 {
		return export.NewError(export.KindValidation, "retention must not be negative", nil)
	}
	if c.Server.Port == "" {
		return export.NewError(export.KindValidation, "server port is required", nil)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return export.NewError(export.KindValidation, "server base_path must start with /", nil)
	}
	if c.Batch.MaxItems < 0 || c.Batch.MinInterval < 0 {
		return export.NewError(export.KindValidation, "batch limits must not be negative", nil)
	}
	return nil
}

func envError(name string, err error) error {
	return export.NewError(export.KindValidation, fmt.Sprintf("invalid %s%s", EnvPrefix, name), err)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
