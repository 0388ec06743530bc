// Package config holds the engine settings shared by the server and the
// command line.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joergoster/Smallbrain/internal/eval"
	"github.com/joergoster/Smallbrain/internal/search"
)

var ErrEmptyPath = errors.New("config: empty path")

type Config struct {
	HashMB         int          `json:"hash_mb"`
	Threads        int          `json:"threads"`
	UseTableBase   bool         `json:"use_tablebase"`
	MoveOverheadMs int          `json:"move_overhead_ms"`
	DefaultDepth   int          `json:"default_depth"`
	ListenAddr     string       `json:"listen_addr"`
	LogLevel       string       `json:"log_level"`
	Eval           eval.Weights `json:"eval"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		HashMB:         16,
		Threads:        1,
		UseTableBase:   false,
		MoveOverheadMs: 20,
		DefaultDepth:   8,
		ListenAddr:     ":8080",
		LogLevel:       "info",
		Eval:           eval.DefaultWeights(),
	}
}

// Normalize clamps values a caller may have set out of range.
func (c Config) Normalize() Config {
	c.HashMB = max(c.HashMB, 1)
	c.Threads = max(c.Threads, 1)
	c.MoveOverheadMs = max(c.MoveOverheadMs, 0)
	c.DefaultDepth = min(max(c.DefaultDepth, 1), search.MaxPly-1)
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Load reads a JSON file over the defaults. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg.Normalize(), nil
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func SetConfig(c Config) {
	configStore.Update(c)
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig.Normalize()
	c.mu.Unlock()
}
