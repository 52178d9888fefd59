package config

import (
	"fmt"
	"os"
	"time"

	"github.com/iudanet/conflictgen/internal/validation"
)

// Переменные окружения клиента. Имеют приоритет над файлом конфигурации.
const (
	EnvClientAccount   = "CONFLICTGEN_ACCOUNT"
	EnvClientMasterKey = "CONFLICTGEN_MASTER_KEY"
	EnvClientEndpoints = "CONFLICTGEN_ENDPOINTS"
)

// CampaignConfig параметры кампаний
type CampaignConfig struct {
	MaxRounds       int           `yaml:"max_rounds"` // отрицательное значение - без ограничения
	SeedDelay       time.Duration `yaml:"seed_delay"`
	UpdateSeedDelay time.Duration `yaml:"update_seed_delay"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	DrainTimeout    time.Duration `yaml:"drain_timeout"`
	ProvisionDelay  time.Duration `yaml:"provision_delay"`
	Seed            uint64        `yaml:"seed"` // 0 - случайный
	LatencyOps      int           `yaml:"latency_ops"`
	Interactive     bool          `yaml:"interactive"`
}

// ClientConfig конфигурация conflictgen
type ClientConfig struct {
	Account          string         `yaml:"account"`
	MasterKey        string         `yaml:"master_key"`
	Database         string         `yaml:"database"`
	LWWCollection    string         `yaml:"lww_collection"`
	CustomCollection string         `yaml:"custom_collection"`
	Journal          string         `yaml:"journal"`
	Log              LogConfig      `yaml:"log"`
	Regions          []Peer         `yaml:"regions"` // порядок важен: первый регион - primary
	Campaign         CampaignConfig `yaml:"campaign"`
	RequestTimeout   time.Duration  `yaml:"request_timeout"`
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Account:          "conflictgen",
		Database:         "ConflictDemoDB",
		LWWCollection:    "LwwCollection",
		CustomCollection: "CustomCollection",
		Journal:          "conflictgen.db",
		Log:              LogConfig{Level: "info", Format: "text"},
		Campaign: CampaignConfig{
			MaxRounds:       -1,
			SeedDelay:       time.Second,
			UpdateSeedDelay: 2 * time.Second,
			SettleDelay:     time.Second,
			DrainTimeout:    30 * time.Second,
			ProvisionDelay:  5 * time.Second,
			LatencyOps:      100,
			Interactive:     true,
		},
		RequestTimeout: 10 * time.Second,
	}
}

// LoadClientConfig загружает конфигурацию клиента: значения по умолчанию,
// затем файл (если path не пустой), затем переменные окружения.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if err := loadYAML(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *ClientConfig) applyEnv() error {
	if v := os.Getenv(EnvClientAccount); v != "" {
		c.Account = v
	}
	if v := os.Getenv(EnvClientMasterKey); v != "" {
		c.MasterKey = v
	}
	if v := os.Getenv(EnvClientEndpoints); v != "" {
		regions, err := ParsePeers(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvClientEndpoints, err)
		}
		c.Regions = regions
	}
	return nil
}

// RegionNames возвращает имена регионов в порядке предпочтения
func (c *ClientConfig) RegionNames() []string {
	names := make([]string, 0, len(c.Regions))
	for _, r := range c.Regions {
		names = append(names, r.ID)
	}
	return names
}

// Endpoint возвращает URL региона
func (c *ClientConfig) Endpoint(region string) (string, bool) {
	for _, r := range c.Regions {
		if r.ID == region {
			return r.URL, true
		}
	}
	return "", false
}

// Validate проверяет конфигурацию клиента
func (c *ClientConfig) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if c.MasterKey == "" {
		return fmt.Errorf("master key is required (set %s)", EnvClientMasterKey)
	}
	if err := validation.ValidateRegions(c.RegionNames()); err != nil {
		return err
	}
	for _, r := range c.Regions {
		if r.URL == "" {
			return fmt.Errorf("region %s: endpoint is required", r.ID)
		}
	}
	if err := validation.ValidateResourceID("database", c.Database); err != nil {
		return err
	}
	if err := validation.ValidateResourceID("collection", c.LWWCollection); err != nil {
		return err
	}
	if err := validation.ValidateResourceID("collection", c.CustomCollection); err != nil {
		return err
	}
	if c.Campaign.SettleDelay < 0 || c.Campaign.SeedDelay < 0 || c.Campaign.UpdateSeedDelay < 0 {
		return fmt.Errorf("campaign delays cannot be negative")
	}
	return nil
}
