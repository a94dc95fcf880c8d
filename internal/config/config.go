// Package config loads the tool settings: defaults, then an optional YAML
// file, then FDV_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fdv.tools/internal/catalogs"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemePlain = "plain"
)

type Config struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	PortScan    int    `yaml:"port_scan"`
	Theme       string `yaml:"theme"`
	Dataset     string `yaml:"dataset"`
	DatasetFile string `yaml:"dataset_file"`
	LogLevel    string `yaml:"log_level"`
	DevLog      bool   `yaml:"dev_log"`
}

func Defaults() Config {
	return Config{
		Host:     "127.0.0.1",
		Port:     8765,
		PortScan: 10,
		Theme:    ThemeDark,
		Dataset:  catalogs.DefaultVariant,
		LogLevel: "info",
	}
}

// Load reads path (optional) and applies the environment. A missing path
// yields the defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		if path == "" {
			return cfg, err
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	c.Host = envString("FDV_HOST", c.Host)
	c.Port = envInt("FDV_PORT", c.Port)
	c.PortScan = envInt("FDV_PORT_SCAN", c.PortScan)
	c.Theme = envString("FDV_THEME", c.Theme)
	c.Dataset = envString("FDV_DATASET", c.Dataset)
	c.DatasetFile = envString("FDV_DATASET_FILE", c.DatasetFile)
	c.LogLevel = envString("FDV_LOG_LEVEL", c.LogLevel)
	c.DevLog = envBool("FDV_DEV_LOG", c.DevLog)
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Host = strings.TrimSpace(c.Host)
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme == "" {
		c.Theme = ThemeDark
	}
	c.Dataset = strings.TrimSpace(c.Dataset)
	if c.Dataset == "" {
		c.Dataset = catalogs.DefaultVariant
	}
	c.DatasetFile = strings.TrimSpace(c.DatasetFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PortScan < 0 {
		c.PortScan = 0
	}
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1..65535", c.Port)
	}
	if c.Port+c.PortScan > 65535 {
		return fmt.Errorf("port_scan %d runs past 65535 from port %d", c.PortScan, c.Port)
	}
	switch c.Theme {
	case ThemeDark, ThemeLight, ThemePlain:
	default:
		return fmt.Errorf("unknown theme %q (want dark|light|plain)", c.Theme)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.DatasetFile == "" {
		known := false
		for _, v := range catalogs.Variants() {
			if v == c.Dataset {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("unknown dataset %q (have %s)", c.Dataset, strings.Join(catalogs.Variants(), ", "))
		}
	}
	return nil
}

// Addr is host:port for the first port of the scan.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
