package framebuffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCodec struct{}

func (stubCodec) Unpack(data []byte) (Frame, error) { return Frame{Data: data}, nil }

func TestNewConfigAppliesOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := NewConfig(4, 1024, WithRegistry(reg), WithCodec(stubCodec{}))

	assert.Equal(t, 4, cfg.BufferSize)
	assert.Equal(t, 1024, cfg.SlotSize)
	assert.Same(t, reg, cfg.Registry)
}

func TestConfigWithDefaultsFillsRegistry(t *testing.T) {
	cfg := NewConfig(1, 1).withDefaults()
	require.NotNil(t, cfg.Registry)
}

func TestLoadConfigParsesYAMLAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "buffer_size: 8\nslot_size: 1048576\nmetrics_addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BufferSize)
	assert.Equal(t, 1048576, cfg.SlotSize)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadConfigRejectsZeroSizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buffer_size: 0\nslot_size: 10\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
