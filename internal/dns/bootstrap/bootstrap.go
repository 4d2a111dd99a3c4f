// Package bootstrap assembles the entry repository and registry from an
// AppConfig. Both binaries share it so the daemon and the CLI see the same
// store the same way.
package bootstrap

import (
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/config"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors/bloom"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors/bolt"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors/lru"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors/memory"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors/sqlite"
	"github.com/haukened/rr-anchor/internal/dns/services/registry"
)

// Stack is a ready registry over its repository.
type Stack struct {
	Repo     *anchors.Repository
	Registry *registry.Registry
}

// Close releases the underlying store.
func (s *Stack) Close() error {
	return s.Repo.Close()
}

// OpenStore opens the backend named by cfg.StoreBackend.
func OpenStore(cfg *config.AppConfig, clk clock.Clock) (anchors.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return memory.New(clk), nil
	case "bolt":
		return bolt.New(cfg.StorePath, clk)
	case "sqlite":
		return sqlite.New(cfg.StorePath, clk)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.StoreBackend)
	}
}

// Build opens the store, layers cache and bloom filter over it, and loads the
// registry. The configured owner is only installed into an empty store.
func Build(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (*Stack, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	store, err := OpenStore(cfg, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create entry cache: %w", err)
	}

	repo := anchors.NewRepository(store, cache, bloom.NewFactory(), uint64(cfg.BloomCapacity), cfg.BloomFPRate, clk)
	if err := repo.Rebuild(); err != nil {
		_ = repo.Close()
		return nil, err
	}

	st := store.Stats()
	logger.Info(map[string]any{
		"backend": cfg.StoreBackend,
		"path":    cfg.StorePath,
		"entries": st.Entries,
		"locked":  st.Locked,
		"cache":   cfg.CacheSize,
	}, "entry repository ready")

	deployer, _ := cfg.OwnerAddress()
	reg, err := registry.New(repo, registry.Options{
		Deployer: deployer,
		Address:  cfg.RegistryAddress(),
		TTL:      cfg.RecordTTL,
		Logger:   logger.With(map[string]any{"component": "registry"}),
	})
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return &Stack{Repo: repo, Registry: reg}, nil
}
