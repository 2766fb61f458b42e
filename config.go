package framebuffer

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/e7canasta/ndnrtc-framebuffer/internal"
)

// Config configures a Buffer. BufferSize and SlotSize are required; the
// rest have sensible defaults. A Config can be built directly as a struct
// literal, with functional options, or loaded from a small YAML document:
//
//	buffer_size: 8
//	slot_size: 1048576
//	metrics_addr: ":9090"
//
// YAML loading follows zgrnet's pkg/config convention: a doc-commented
// schema next to the struct, gopkg.in/yaml.v3 struct tags, validated after
// unmarshal.
type Config struct {
	// BufferSize is the number of slots the pool holds. Must be > 0.
	BufferSize int `yaml:"buffer_size"`

	// SlotSize is the byte capacity of each slot. Must be > 0, and large
	// enough to hold segmentsNum*segmentSize for any frame the caller
	// intends to assemble.
	SlotSize int `yaml:"slot_size"`

	// MetricsAddr, if non-empty, is where Prometheus metrics would be
	// exposed by a caller-run HTTP server (see Exporter). The
	// Buffer itself never binds a socket; this field only threads the
	// address through config loading for callers that want one place to
	// configure both.
	MetricsAddr string `yaml:"metrics_addr"`

	// Logger receives structured log output. Defaults to slog.Default().
	Logger *slog.Logger `yaml:"-"`

	// Codec decodes assembled segment bytes into a Frame. Defaults to a
	// pass-through codec that returns the assembled bytes verbatim.
	Codec Codec `yaml:"-"`

	// Registry, if set, is where Prometheus collectors for this Buffer
	// are registered. Defaults to a fresh, unshared prometheus.Registry
	// so constructing multiple Buffers (routine in tests) never panics
	// on duplicate collector registration.
	Registry *prometheus.Registry `yaml:"-"`
}

// Option configures a Config, following the functional-options pattern
// zgrnet's UDP transport uses for its Option/WithBindAddr/WithAllowUnknown.
type Option func(*Config)

func WithLogger(log *slog.Logger) Option { return func(c *Config) { c.Logger = log } }
func WithCodec(codec Codec) Option       { return func(c *Config) { c.Codec = codec } }
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) { c.Registry = reg }
}

// NewConfig builds a Config from required buffer/slot sizes plus options.
func NewConfig(bufferSize, slotSize int, opts ...Option) Config {
	cfg := Config{BufferSize: bufferSize, SlotSize: slotSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	return c
}

func (c Config) metrics() *internal.Metrics {
	return internal.NewMetrics(c.Registry)
}

// LoadConfig reads a YAML document describing BufferSize/SlotSize/
// MetricsAddr from path, grounded on zgrnet's pkg/config.Config loader.
// Logger, Codec, and Registry are never set from YAML and keep their zero
// values (callers apply WithLogger/WithCodec/WithRegistry afterward).
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("framebuffer: read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("framebuffer: parse config %s: %w", path, err)
	}
	if cfg.BufferSize <= 0 || cfg.SlotSize <= 0 {
		return Config{}, fmt.Errorf("framebuffer: config %s: buffer_size and slot_size must both be > 0", path)
	}
	return cfg, nil
}
