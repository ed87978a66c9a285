package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-menshenin/uniqid/fleetctrl"
	"github.com/iv-menshenin/uniqid/platform"
	"github.com/iv-menshenin/uniqid/uid"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node_id: 00112233445566778899aabbccddeeff
port: 8100
log_level: debug
entropy: uuid
persistent_keys: true
ownership_timeout: 250ms
discovery_interval: 2s
keys: [alpha, beta]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uid.MustParse("00112233445566778899aabbccddeeff"), cfg.NodeID)
	assert.Equal(t, uint16(8100), cfg.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Keys)
	assert.Equal(t, 250*time.Millisecond, cfg.OwnershipTimeout)
	assert.Equal(t, 10*time.Millisecond, cfg.OwnershipWindow, "default kept")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, fleetctrl.LogLevelDebug, lvl)

	opts := cfg.Options()
	assert.Equal(t, cfg.NodeID, opts.ID)
	assert.Equal(t, platform.UUID{}, opts.Entropy)
	assert.True(t, opts.PersistentKeys)
	assert.Equal(t, 2*time.Second, opts.DiscoveryInterval)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.True(t, cfg.NodeID.IsZero())
	assert.Equal(t, Default(), cfg)
}

func TestInvalid(t *testing.T) {
	_, err := Parse([]byte("node_id: not-an-identifier"))
	assert.ErrorIs(t, err, uid.ErrMalformed)

	_, err = Parse([]byte("entropy: dice"))
	assert.ErrorIs(t, err, ErrUnknownEntropy)

	_, err = Parse([]byte("log_level: loud"))
	assert.ErrorIs(t, err, ErrUnknownLogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
