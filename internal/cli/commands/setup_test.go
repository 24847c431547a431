package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdash/internal/cli/config"
	"github.com/leapstack-labs/leapdash/internal/testutil"
)

func TestLoadCatalog_Builtin(t *testing.T) {
	cfg := config.Default()

	var observed []string
	cat, registry, err := loadCatalog(cfg, testutil.NewTestLogger(t), func(key string, _ time.Duration, _ error) {
		observed = append(observed, key)
	})
	require.NoError(t, err)

	snap := cat.Snapshot()
	assert.Equal(t, 16, snap.Table.Len())
	assert.Equal(t, "Workplace", labelLookup(snap, "")("menu.dashboard.workplace"))
	assert.Equal(t, "Workplace", labelLookup(snap, "xx-unknown")("menu.dashboard.workplace"))

	route, ok := snap.Default()
	require.True(t, ok)
	_, err = route.Page.Preload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard/workplace"}, observed, "preloads reach the observer")
	assert.True(t, registry.Has("list/card"))
}

func TestLoadCatalog_PagesDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "list"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list", "card.yaml"),
		[]byte("kind: stats\nsummary: Custom cards\n"), 0o600))

	cfg := config.Default()
	cfg.PagesDir = dir

	cat, _, err := loadCatalog(cfg, testutil.NewTestLogger(t), nil)
	require.NoError(t, err)

	route, ok := cat.Snapshot().Table.Find("list/card")
	require.True(t, ok)
	assert.Equal(t, "list/card", route.Page.Key())
}

func TestLoadCatalog_InvalidLocale(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultLocale = "!!"

	_, _, err := loadCatalog(cfg, testutil.NewTestLogger(t), nil)
	assert.ErrorContains(t, err, "invalid default_locale")
}
