package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParsePeers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Peer
		wantErr bool
	}{
		{name: "empty", input: "", want: []Peer{}},
		{
			name:  "two peers with spaces in names",
			input: "West US=http://localhost:8081, East US = http://localhost:8082",
			want: []Peer{
				{ID: "West US", URL: "http://localhost:8081"},
				{ID: "East US", URL: "http://localhost:8082"},
			},
		},
		{name: "trailing comma", input: "a=http://a,", want: []Peer{{ID: "a", URL: "http://a"}}},
		{name: "missing separator", input: "a", wantErr: true},
		{name: "empty url", input: "a=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeers(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := LoadClientConfig("")
		require.NoError(t, err)
		assert.Equal(t, -1, cfg.Campaign.MaxRounds)
		assert.Equal(t, 2*time.Second, cfg.Campaign.UpdateSeedDelay)
		assert.Equal(t, time.Second, cfg.Campaign.SettleDelay)
		assert.Equal(t, 100, cfg.Campaign.LatencyOps)
		assert.True(t, cfg.Campaign.Interactive)
	})

	t.Run("file overrides defaults, missing keys keep them", func(t *testing.T) {
		path := writeConfig(t, `
account: demo
master_key: from-file
database: db
regions:
  - id: West US 2
    url: http://localhost:8081
  - id: North Europe
    url: http://localhost:8082
campaign:
  max_rounds: 0
  settle_delay: 250ms
  interactive: false
`)
		cfg, err := LoadClientConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", cfg.Account)
		assert.Equal(t, []string{"West US 2", "North Europe"}, cfg.RegionNames())
		assert.Equal(t, 0, cfg.Campaign.MaxRounds)
		assert.Equal(t, 250*time.Millisecond, cfg.Campaign.SettleDelay)
		assert.Equal(t, time.Second, cfg.Campaign.SeedDelay)
		assert.False(t, cfg.Campaign.Interactive)
		assert.Equal(t, "LwwCollection", cfg.LWWCollection)

		url, ok := cfg.Endpoint("North Europe")
		assert.True(t, ok)
		assert.Equal(t, "http://localhost:8082", url)
		require.NoError(t, cfg.Validate())
	})

	t.Run("environment has priority", func(t *testing.T) {
		path := writeConfig(t, "master_key: from-file\n")
		t.Setenv(EnvClientMasterKey, "from-env")
		t.Setenv(EnvClientEndpoints, "a=http://a,b=http://b")

		cfg, err := LoadClientConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.MasterKey)
		assert.Equal(t, []string{"a", "b"}, cfg.RegionNames())
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadClientConfig(writeConfig(t, "regions: [::"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadClientConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		cfg := DefaultClientConfig()
		cfg.MasterKey = "key"
		cfg.Regions = []Peer{{ID: "a", URL: "http://a"}, {ID: "b", URL: "http://b"}}
		return cfg
	}

	tests := []struct {
		mutate  func(*ClientConfig)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*ClientConfig) {}},
		{name: "no master key", mutate: func(c *ClientConfig) { c.MasterKey = "" }, wantErr: true},
		{name: "no regions", mutate: func(c *ClientConfig) { c.Regions = nil }, wantErr: true},
		{name: "duplicate region", mutate: func(c *ClientConfig) { c.Regions[1].ID = "A" }, wantErr: true},
		{name: "missing endpoint", mutate: func(c *ClientConfig) { c.Regions[0].URL = "" }, wantErr: true},
		{name: "bad collection", mutate: func(c *ClientConfig) { c.CustomCollection = "a/b" }, wantErr: true},
		{name: "negative delay", mutate: func(c *ClientConfig) { c.Campaign.SettleDelay = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
region: East US
hub_region: West US
master_key: secret
multi_master: false
replication_lag: 1s
rate_limit:
  requests: 50
peers:
  - id: West US
    url: http://localhost:8081
`)
	t.Setenv(EnvServerPeers, "")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "East US", cfg.Region)
	assert.Equal(t, "West US", cfg.HubRegion)
	assert.False(t, cfg.MultiMaster)
	assert.Equal(t, time.Second, cfg.ReplicationLag)
	assert.Equal(t, 50, cfg.RateLimit.Requests)
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []Peer{{ID: "West US", URL: "http://localhost:8081"}}, cfg.Peers)
}

func TestServerConfig_Validate(t *testing.T) {
	t.Run("hub defaults to own region", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.Region = "West US"
		cfg.MasterKey = "k"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "West US", cfg.HubRegion)
	})

	t.Run("self peer", func(t *testing.T) {
		cfg := DefaultServerConfig()
		cfg.Region = "West US"
		cfg.MasterKey = "k"
		cfg.Peers = []Peer{{ID: "West US", URL: "http://x"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("env master key", func(t *testing.T) {
		t.Setenv(EnvServerMasterKey, "env-key")
		cfg, err := LoadServerConfig("")
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.MasterKey)
		assert.Error(t, cfg.Validate(), "region is still missing")
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		cfg      LogConfig
		name     string
		contains string
		wantErr  bool
	}{
		{name: "text", cfg: LogConfig{Level: "info", Format: "text"}, contains: "msg=hello"},
		{name: "json", cfg: LogConfig{Level: "debug", Format: "json"}, contains: `"msg":"hello"`},
		{name: "defaults", cfg: LogConfig{}, contains: "msg=hello"},
		{name: "bad level", cfg: LogConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: LogConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(tt.cfg, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			logger.Info("hello")
			assert.Contains(t, buf.String(), tt.contains)
		})
	}

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(LogConfig{Level: "error"}, &buf)
		require.NoError(t, err)
		logger.Info("hidden")
		assert.Empty(t, buf.String())
	})
}
