package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/shogicore/internal/board"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Load(nil))

	assert.False(t, cfg.GetBool(KeyDebug))
	assert.Equal(t, 1, cfg.GetInt(KeyThreads))
	assert.Equal(t, 64, cfg.GetInt(KeyPerftCacheMB))
	assert.Equal(t, board.StateConfig{EndingRule: board.EndingRuleDeclare27}, cfg.StateConfig())
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SHOGICORE_THREADS", "3")
	t.Setenv("SHOGICORE_MAX_PLY", "256")

	cfg := &Config{}
	require.NoError(t, cfg.Load([]string{"-threads", "8", "-ending-rule", "none"}))

	assert.Equal(t, 8, cfg.GetInt(KeyThreads))
	assert.Equal(t, 256, cfg.GetInt(KeyMaxPly))
	assert.Equal(t, board.StateConfig{EndingRule: board.EndingRuleNone, MaxPly: 256}, cfg.StateConfig())
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shogicore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 4\nperft-cache-mb: 0\ndebug: true\n"), 0644))

	cfg := &Config{}
	require.NoError(t, cfg.Load([]string{"-config", path, "-perft-cache-mb", "16"}))

	assert.Equal(t, 4, cfg.GetInt(KeyThreads))
	assert.Equal(t, 16, cfg.GetInt(KeyPerftCacheMB))
	assert.True(t, cfg.GetBool(KeyDebug))
}

func TestInvalidSettings(t *testing.T) {
	for _, args := range [][]string{
		{"-ending-rule", "try"},
		{"-threads", "0"},
		{"-max-ply", "-1"},
		{"-config", "/nonexistent/shogicore.yaml"},
		{"-no-such-flag"},
	} {
		cfg := &Config{}
		assert.Error(t, cfg.Load(args), "%v", args)
	}
}

func TestParseEndingRule(t *testing.T) {
	rule, err := ParseEndingRule("Declare27")
	require.NoError(t, err)
	assert.Equal(t, board.EndingRuleDeclare27, rule)

	_, err = ParseEndingRule("")
	assert.Error(t, err)
}
