package config

import (
	"fmt"
	"os"
	"time"

	"github.com/iudanet/conflictgen/internal/validation"
)

// Переменные окружения regiond
const (
	EnvServerAccount   = "REGIOND_ACCOUNT"
	EnvServerMasterKey = "REGIOND_MASTER_KEY"
	EnvServerPeers     = "REGIOND_PEERS"
)

// RateLimitConfig параметры throttling
type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // 0 - без ограничения
	Window   time.Duration `yaml:"window"`
}

// ServerConfig конфигурация одного региона
type ServerConfig struct {
	Region          string          `yaml:"region"`
	Listen          string          `yaml:"listen"`
	DBPath          string          `yaml:"db_path"`
	HubRegion       string          `yaml:"hub_region"`
	Account         string          `yaml:"account"`
	MasterKey       string          `yaml:"master_key"`
	Log             LogConfig       `yaml:"log"`
	Peers           []Peer          `yaml:"peers"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	ReplicationLag  time.Duration   `yaml:"replication_lag"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	MultiMaster     bool            `yaml:"multi_master"`
}

// DefaultServerConfig возвращает конфигурацию региона по умолчанию
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen:          ":8081",
		DBPath:          "regiond.db",
		Account:         "conflictgen",
		Log:             LogConfig{Level: "info", Format: "text"},
		RateLimit:       RateLimitConfig{Requests: 0, Window: time.Second},
		ReplicationLag:  200 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
		MultiMaster:     true,
	}
}

// LoadServerConfig загружает конфигурацию региона: значения по умолчанию,
// затем файл, затем переменные окружения.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if err := loadYAML(path, cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvServerAccount); v != "" {
		cfg.Account = v
	}
	if v := os.Getenv(EnvServerMasterKey); v != "" {
		cfg.MasterKey = v
	}
	if v := os.Getenv(EnvServerPeers); v != "" {
		peers, err := ParsePeers(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvServerPeers, err)
		}
		cfg.Peers = peers
	}

	return cfg, nil
}

// Validate проверяет конфигурацию региона и заполняет hub по умолчанию
func (c *ServerConfig) Validate() error {
	if err := validation.ValidateRegion(c.Region); err != nil {
		return err
	}
	if c.HubRegion == "" {
		c.HubRegion = c.Region
	}
	if err := validation.ValidateRegion(c.HubRegion); err != nil {
		return fmt.Errorf("hub region: %w", err)
	}
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if c.MasterKey == "" {
		return fmt.Errorf("master key is required (set %s)", EnvServerMasterKey)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	for _, p := range c.Peers {
		if p.ID == c.Region {
			return fmt.Errorf("region %s cannot be its own peer", p.ID)
		}
	}
	if c.ReplicationLag < 0 {
		return fmt.Errorf("replication lag cannot be negative")
	}
	return nil
}
