package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Draft backends.
const (
	DraftsMemory = "memory"
	DraftsRedis  = "redis"
	DraftsFile   = "file"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		ID   string `yaml:"id"`
		Path string `yaml:"path"`
		TTL  string `yaml:"ttl"`
	} `yaml:"catalog"`
	Assessment struct {
		Industry       string  `yaml:"industry"`
		AutoSave       string  `yaml:"autoSave"`
		SessionTimeout string  `yaml:"sessionTimeout"`
		SessionCheck   string  `yaml:"sessionCheck"`
		Weights        Weights `yaml:"weights"`
	} `yaml:"assessment"`
	Drafts struct {
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
		TTL     string `yaml:"ttl"`
	} `yaml:"drafts"`
	Uploads struct {
		Dir string `yaml:"dir"`
	} `yaml:"uploads"`
	Telemetry struct {
		BufferSize int `yaml:"bufferSize"`
	} `yaml:"telemetry"`
}

// Weights are the category blend for the overall score.
type Weights struct {
	Environmental float64 `yaml:"environmental"`
	Social        float64 `yaml:"social"`
	Governance    float64 `yaml:"governance"`
}

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Catalog.ID == "" {
		c.Catalog.ID = "esg-core"
	}
	if c.Assessment.Industry == "" {
		c.Assessment.Industry = "Other"
	}
	if c.Drafts.Backend == "" {
		c.Drafts.Backend = DraftsMemory
		if c.Redis.Addr != "" {
			c.Drafts.Backend = DraftsRedis
		}
	}
	if c.Drafts.Backend == DraftsFile && c.Drafts.Dir == "" {
		c.Drafts.Dir = "data/drafts"
	}
}

func (c Config) validate() error {
	switch c.Drafts.Backend {
	case DraftsMemory, DraftsFile:
	case DraftsRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("drafts backend %q needs redis.addr", c.Drafts.Backend)
		}
	default:
		return fmt.Errorf("unknown drafts backend %q", c.Drafts.Backend)
	}
	for name, raw := range map[string]string{
		"redis.ttl":                 c.Redis.TTL,
		"catalog.ttl":               c.Catalog.TTL,
		"assessment.autoSave":       c.Assessment.AutoSave,
		"assessment.sessionTimeout": c.Assessment.SessionTimeout,
		"assessment.sessionCheck":   c.Assessment.SessionCheck,
		"drafts.ttl":                c.Drafts.TTL,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Duration parses a duration string or returns the fallback if empty.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
