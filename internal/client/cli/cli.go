package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/iudanet/conflictgen/internal/client/api"
	"github.com/iudanet/conflictgen/internal/client/iocli"
	"github.com/iudanet/conflictgen/internal/client/storage"
	"github.com/iudanet/conflictgen/internal/config"
	"github.com/iudanet/conflictgen/internal/crypto"
	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/pool"
	"github.com/iudanet/conflictgen/internal/store"
	"github.com/iudanet/conflictgen/internal/token"
)

// Journal локальный журнал клиента
type Journal interface {
	storage.CampaignStorage
	storage.MetadataStorage
}

type Cli struct {
	io      iocli.IO
	cfg     *config.ClientConfig
	journal Journal
	dial    pool.DialFunc
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg *config.ClientConfig, io iocli.IO, journal Journal, dial pool.DialFunc, logger *slog.Logger) *Cli {
	return &Cli{
		io:      io,
		cfg:     cfg,
		journal: journal,
		dial:    dial,
		logger:  logger,
		now:     time.Now,
	}
}

// MasterKeySources источники master key из командной строки
type MasterKeySources struct {
	FromFile string
	FromArgs string
}

// ResolveMasterKey reads the account master key with priority:
// 1. Environment variable CONFLICTGEN_MASTER_KEY
// 2. File specified in sources.FromFile
// 3. Command-line parameter sources.FromArgs
// 4. master_key from the config file
// 5. Interactive prompt (fallback)
func ResolveMasterKey(cfg *config.ClientConfig, sources MasterKeySources, io iocli.IO) (string, error) {
	// Priority 1: Environment variable
	if envKey := os.Getenv(config.EnvClientMasterKey); envKey != "" {
		return envKey, nil
	}

	// Priority 2: File
	if sources.FromFile != "" {
		content, err := os.ReadFile(sources.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read master key file: %w", err)
		}
		// Убираем trailing newline/whitespace
		key := strings.TrimSpace(string(content))
		if key == "" {
			return "", fmt.Errorf("master key file is empty")
		}
		return key, nil
	}

	// Priority 3: CLI parameter
	if sources.FromArgs != "" {
		return sources.FromArgs, nil
	}

	// Priority 4: config file
	if cfg.MasterKey != "" {
		return cfg.MasterKey, nil
	}

	// Priority 5: Interactive prompt (fallback)
	key, err := io.ReadPassword("Account master key: ")
	if err != nil {
		return "", fmt.Errorf("failed to read master key from stdin: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("master key cannot be empty")
	}
	return key, nil
}

// NewDialer создает DialFunc, подключающий клиента к endpoint региона.
// Каждый хендл предпочитает свой регион и разрешает запись в несколько регионов.
func NewDialer(cfg *config.ClientConfig) (pool.DialFunc, error) {
	secret, err := crypto.DeriveSigningKey(cfg.MasterKey, cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	tok := token.Config{Account: cfg.Account, Secret: secret}

	return func(ctx context.Context, region string) (store.Handle, error) {
		endpoint, ok := cfg.Endpoint(region)
		if !ok {
			return nil, fmt.Errorf("no endpoint configured for region %q", region)
		}

		c, err := api.Dial(ctx, api.Config{
			Token:                  tok,
			Region:                 region,
			Endpoint:               endpoint,
			Timeout:                cfg.RequestTimeout,
			MultipleWriteLocations: true,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}, nil
}

func (c *Cli) openPool(ctx context.Context) (*pool.Pool, error) {
	return pool.New(ctx, c.cfg.RegionNames(), c.dial, c.logger)
}

// dialPrimary хендл первого региона
func (c *Cli) dialPrimary(ctx context.Context) (store.Handle, error) {
	regions := c.cfg.RegionNames()
	if len(regions) == 0 {
		return nil, pool.ErrNoRegions
	}
	return c.dial(ctx, regions[0])
}

// collectionRef lww и custom - коллекции из конфигурации, иначе имя коллекции
func (c *Cli) collectionRef(name string) models.CollectionRef {
	switch strings.ToLower(name) {
	case "lww":
		name = c.cfg.LWWCollection
	case "custom":
		name = c.cfg.CustomCollection
	}
	return models.CollectionRef{Database: c.cfg.Database, Collection: name}
}

func (c *Cli) closeHandle(h store.Handle) {
	if err := h.Close(); err != nil {
		c.logger.Warn("Failed to close regional handle", "region", h.Region(), "error", err)
	}
}

func PrintUsage(io iocli.IO) {
	io.Println("conflictgen - write conflict generator for multi-region stores")
	io.Println()
	io.Println("Usage:")
	io.Println("  conflictgen [OPTIONS] COMMAND [COMMAND OPTIONS]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                Show version information")
	io.Println("  --config PATH            Path to YAML config")
	io.Println("  --journal PATH           Path to local campaign journal")
	io.Println("  --endpoints LIST         Regions as name=url,... (first region is primary)")
	io.Println("  --master-key KEY         Account master key (not recommended, use env var or file)")
	io.Println("  --master-key-file PATH   Path to file containing the master key")
	io.Println()
	io.Println("Master Key Priority (highest to lowest):")
	io.Println("  1. CONFLICTGEN_MASTER_KEY environment variable")
	io.Println("  2. --master-key-file (file path)")
	io.Println("  3. --master-key (command line)")
	io.Println("  4. master_key in the config file")
	io.Println("  5. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  setup                    Create database, LWW and Custom collections")
	io.Println("  insert                   Generate insert conflicts (default: LWW collection)")
	io.Println("  update                   Generate update conflicts (default: Custom collection)")
	io.Println("  delete                   Generate delete conflicts (default: Custom collection)")
	io.Println("  demo                     Insert conflicts on LWW, then update conflicts on Custom")
	io.Println("  conflicts                List the conflict feed of a collection")
	io.Println("  cleanup                  Delete conflicts and all documents of both collections")
	io.Println("  latency                  Measure read and write latency against one region")
	io.Println("  history                  Show journaled campaigns")
	io.Println()
	io.Println("Campaign options:")
	io.Println("  -rounds N                Maximum rounds, negative for unbounded")
	io.Println("  -collection NAME         lww, custom or a collection name")
	io.Println("  -yes                     Do not ask for confirmation between rounds")
	io.Println("  -seed N                  Random seed for document ids, 0 for random")
	io.Println()
	io.Println("Examples:")
	io.Println("  export CONFLICTGEN_MASTER_KEY='demo-master-key'")
	io.Println("  conflictgen --endpoints 'West US 2=http://localhost:8081,North Europe=http://localhost:8082' setup")
	io.Println("  conflictgen --config conflictgen.yaml update -rounds 10 -yes")
	io.Println("  conflictgen --config conflictgen.yaml conflicts -collection custom")
}
