package bootstrap

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-anchor/internal/dns/config"
	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/services/registry"
)

const (
	ownerHex = "0x00000000000000000000000000000000000000aa"
	testCID  = "QmdytmR4wULMd3SLo6ePF4s3WcRHWcpnJZ7bHhoj3QB13v"
)

func testConfig(backend, path string) *config.AppConfig {
	cfg := config.DEFAULT_APP_CONFIG
	cfg.StoreBackend = backend
	cfg.StorePath = path
	cfg.Owner = ownerHex
	cfg.CacheSize = 16
	cfg.BloomCapacity = 64
	return &cfg
}

func TestBuild_Backends(t *testing.T) {
	owner := domain.MustParseAddress(ownerHex)
	tests := []struct {
		backend string
		file    string
		durable bool
	}{
		{backend: "memory"},
		{backend: "bolt", file: "anchors.db", durable: true},
		{backend: "sqlite", file: "anchors.sqlite", durable: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), tt.file)
			}
			cfg := testConfig(tt.backend, path)

			stack, err := Build(cfg, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, owner, stack.Registry.Owner())
			require.NoError(t, stack.Registry.SetIPFS(owner, "n.xtnx", testCID, true))
			require.NoError(t, stack.Close())

			if !tt.durable {
				return
			}
			// Reopen without a configured owner: both owner and entry survive.
			cfg.Owner = ""
			stack, err = Build(cfg, nil, nil)
			require.NoError(t, err)
			defer stack.Close()
			assert.Equal(t, owner, stack.Registry.Owner())
			cid, found, err := stack.Registry.LookupIPFS("n.xtnx")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, testCID, cid)
			assert.Equal(t, uint64(1), stack.Repo.RepoStats().Store.Locked)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.Owner = ""
	_, err := Build(cfg, nil, nil)
	assert.True(t, errors.Is(err, registry.ErrNoOwner))

	cfg = testConfig("etcd", "")
	_, err = Build(cfg, nil, nil)
	assert.Error(t, err)

	cfg = testConfig("bolt", filepath.Join(t.TempDir(), "missing", "dir", "anchors.db"))
	_, err = Build(cfg, nil, nil)
	assert.Error(t, err)

	cfg = testConfig("memory", "")
	cfg.CacheSize = 0
	stack, err := Build(cfg, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, stack.Close())
}
