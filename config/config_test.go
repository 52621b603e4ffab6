package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowtrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store_capacity: 4096
engine_net: 10.0.0.1/16
ip_address_count: 4
flow_steering: ip
kni:
  name: vEth7
`)
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 4096, cfg.StoreCapacity)
	require.Equal(t, "10.0.0.1/16", cfg.EngineNet)
	require.Equal(t, 4, cfg.IPAddressCount)
	require.Equal(t, "ip", cfg.FlowSteering)
	require.Equal(t, "vEth7", cfg.Kni.Name)

	// untouched keys keep their defaults
	require.EqualValues(t, 32768, cfg.PortRangeFirst)
	require.EqualValues(t, 60999, cfg.PortRangeLast)
	require.Equal(t, 2000, cfg.PayloadPoolSize)
	require.Equal(t, "nskni", cfg.Kni.Netns)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestReadConfigBadYaml(t *testing.T) {
	path := writeConfig(t, "store_capacity: [not a number\n")
	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errs   string
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"zero capacity", func(c *Config) { c.StoreCapacity = 0 }, "store_capacity"},
		{"too many addresses", func(c *Config) { c.IPAddressCount = 9 }, "ip_address_count"},
		{"no addresses", func(c *Config) { c.IPAddressCount = 0 }, "ip_address_count"},
		{"port zero", func(c *Config) { c.PortRangeFirst = 0 }, "port range"},
		{"inverted ports", func(c *Config) { c.PortRangeFirst = 5000; c.PortRangeLast = 4000 }, "port range"},
		{"empty pool", func(c *Config) { c.PayloadPoolSize = 0 }, "payload_pool_size"},
		{"zero chunk", func(c *Config) { c.ChunkLength = 0 }, "chunk_length"},
		{"bad steering", func(c *Config) { c.FlowSteering = "hash" }, "flow_steering"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(cfg)
			err := cfg.Validate()
			if c.errs == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, c.errs)
		})
	}
}
