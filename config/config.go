package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KniConfig describes the kernel network interface the engine provisions
// for slow-path traffic.
type KniConfig struct {
	Name  string `yaml:"name"`
	Netns string `yaml:"netns"`
	Mac   string `yaml:"mac"`
}

// Config is the per-process engine configuration. Every pipeline core gets
// its own stores sized from StoreCapacity.
type Config struct {
	StoreCapacity   int       `yaml:"store_capacity"`   // records per store; must exceed peak live connections
	DetailedRecords bool      `yaml:"detailed_records"` // print full record snapshots in reports
	EngineNet       string    `yaml:"engine_net"`       // first engine address and prefix, CIDR
	IPAddressCount  int       `yaml:"ip_address_count"` // consecutive addresses from EngineNet, at most 8
	PortRangeFirst  uint16    `yaml:"port_range_first"`
	PortRangeLast   uint16    `yaml:"port_range_last"`
	FlowSteering    string    `yaml:"flow_steering"`     // "port" or "ip"
	PayloadPoolSize int       `yaml:"payload_pool_size"` // payload chunks per pipeline
	ChunkLength     int       `yaml:"chunk_length"`      // bytes per payload chunk
	CpuClockHz      uint64    `yaml:"cpu_clock_hz"`      // 0 = autodetect from sysfs
	Kni             KniConfig `yaml:"kni"`
}

func DefaultConfig() *Config {
	return &Config{
		StoreCapacity:   1 << 20,
		EngineNet:       "192.168.222.1/24",
		IPAddressCount:  1,
		PortRangeFirst:  32768,
		PortRangeLast:   60999,
		FlowSteering:    "port",
		PayloadPoolSize: 2000,
		ChunkLength:     1440,
		Kni: KniConfig{
			Name:  "vEth0",
			Netns: "nskni",
		},
	}
}

// ReadConfig loads the yaml file on top of the defaults.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StoreCapacity <= 0 {
		return fmt.Errorf("store_capacity must be positive, got %d", c.StoreCapacity)
	}
	if c.IPAddressCount < 1 || c.IPAddressCount > 8 {
		return fmt.Errorf("ip_address_count must be 1..8, got %d", c.IPAddressCount)
	}
	if c.PortRangeFirst == 0 || c.PortRangeFirst > c.PortRangeLast {
		return fmt.Errorf("invalid port range %d..%d", c.PortRangeFirst, c.PortRangeLast)
	}
	if c.PayloadPoolSize <= 0 {
		return fmt.Errorf("payload_pool_size must be positive, got %d", c.PayloadPoolSize)
	}
	if c.ChunkLength <= 0 {
		return fmt.Errorf("chunk_length must be positive, got %d", c.ChunkLength)
	}
	switch c.FlowSteering {
	case "", "port", "ip":
	default:
		return fmt.Errorf("flow_steering must be \"port\" or \"ip\", got %q", c.FlowSteering)
	}
	return nil
}
