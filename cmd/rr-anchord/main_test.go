package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-anchor/internal/dns/config"
	"github.com/haukened/rr-anchor/internal/dns/domain"
)

const (
	testOwner = "0x00000000000000000000000000000000000000aa"
	testCID   = "QmdytmR4wULMd3SLo6ePF4s3WcRHWcpnJZ7bHhoj3QB13v"
)

func setBaseEnv(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("ANCHOR_ENV", "dev")
	t.Setenv("ANCHOR_LOG_LEVEL", "error")
	t.Setenv("ANCHOR_OWNER", testOwner)
	t.Setenv("ANCHOR_STORE_BACKEND", "bolt")
	t.Setenv("ANCHOR_STORE_PATH", filepath.Join(dir, "anchors.db"))
}

// TestApplication_Integration runs the daemon against a seeded bolt store and
// queries it over HTTP before shutting it down.
func TestApplication_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	seedFile := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`anchors:
  - name: n.xtnx
    cid: `+testCID+`
    lock: true
`), 0o644))
	setBaseEnv(t, dir)
	t.Setenv("ANCHOR_SEED_FILE", seedFile)

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Listen = "127.0.0.1:0"

	app, err := buildApplication(cfg)
	require.NoError(t, err)

	locked, err := app.stack.Registry.IsLocked("n.xtnx")
	require.NoError(t, err)
	assert.True(t, locked)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	appErr := make(chan error, 1)
	go func() {
		appErr <- app.Run(ctx)
	}()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/names/n.xtnx", app.transport.Address()))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, body, testCID)
	assert.Contains(t, body, `"locked":true`)

	cancel()
	select {
	case err := <-appErr:
		assert.NoError(t, err, "Application should shutdown gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Application failed to shutdown within timeout")
	}
}

// TestBuildApplication_ConfigurationVariations tests different configurations
func TestBuildApplication_ConfigurationVariations(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(t *testing.T, dir string)
		wantErr       bool
		errorContains string
	}{
		{
			name:     "minimal valid config",
			setupEnv: func(*testing.T, string) {},
		},
		{
			name: "sqlite backend",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("ANCHOR_STORE_BACKEND", "sqlite")
				t.Setenv("ANCHOR_STORE_PATH", filepath.Join(dir, "anchors.sqlite"))
			},
		},
		{
			name: "memory backend without cache",
			setupEnv: func(t *testing.T, _ string) {
				t.Setenv("ANCHOR_STORE_BACKEND", "memory")
				t.Setenv("ANCHOR_CACHE_SIZE", "0")
			},
		},
		{
			name: "missing seed file",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("ANCHOR_SEED_FILE", filepath.Join(dir, "absent.yaml"))
			},
			wantErr:       true,
			errorContains: "failed to load seed file",
		},
		{
			name: "no owner for empty store",
			setupEnv: func(t *testing.T, _ string) {
				t.Setenv("ANCHOR_OWNER", "")
			},
			wantErr:       true,
			errorContains: "registry has no owner",
		},
		{
			name: "unwritable store path",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("ANCHOR_STORE_PATH", filepath.Join(dir, "missing", "anchors.db"))
			},
			wantErr:       true,
			errorContains: "failed to build registry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			setBaseEnv(t, dir)
			tt.setupEnv(t, dir)

			cfg, err := config.Load()
			require.NoError(t, err)

			app, err := buildApplication(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, app)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, app)
			assert.NoError(t, app.stack.Close())
		})
	}
}

// TestApplication_SeedConflictsDoNotAbort checks that a seed conflicting with
// locked state is logged, not fatal.
func TestApplication_SeedConflictsDoNotAbort(t *testing.T) {
	dir := t.TempDir()
	setBaseEnv(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)
	app, err := buildApplication(cfg)
	require.NoError(t, err)
	owner := domain.MustParseAddress(testOwner)
	require.NoError(t, app.stack.Registry.LockName(owner, "burned.xtnx"))
	require.NoError(t, app.stack.Close())

	seedFile := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedFile, []byte(`{"anchors":[
  {"name":"burned.xtnx","cid":"`+testCID+`"},
  {"name":"ok.xtnx","cid":"`+testCID+`"}
]}`), 0o644))
	t.Setenv("ANCHOR_SEED_FILE", seedFile)

	cfg, err = config.Load()
	require.NoError(t, err)
	app, err = buildApplication(cfg)
	require.NoError(t, err)
	defer app.stack.Close()

	cid, found, err := app.stack.Registry.LookupIPFS("ok.xtnx")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testCID, cid)
}

func TestApplication_RunFailsOnBusyAddress(t *testing.T) {
	dir := t.TempDir()
	setBaseEnv(t, dir)
	t.Setenv("ANCHOR_STORE_BACKEND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Listen = "256.0.0.1:1"

	app, err := buildApplication(cfg)
	require.NoError(t, err)
	err = app.Run(context.Background())
	assert.ErrorContains(t, err, "failed to start transport")
}
