// Package config loads settings from flags, the environment and an optional
// config file.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hailam/shogicore/internal/board"
)

// Setting keys
const (
	KeyDebug        = "debug"
	KeyDataDir      = "data-dir"
	KeyThreads      = "threads"
	KeyPerftCacheMB = "perft-cache-mb"
	KeyEndingRule   = "ending-rule"
	KeyMaxPly       = "max-ply"
	KeyHistoryFile  = "history-file"
	KeyCPUProfile   = "cpu-profile"
	KeyUSI          = "usi"
	KeyConfigFile   = "config"
)

// EnvPrefix is prepended to every environment variable, e.g. SHOGICORE_DATA_DIR.
const EnvPrefix = "SHOGICORE"

// Config holds the merged settings. Precedence, highest first: flags,
// environment, config file, defaults.
type Config struct {
	viper.Viper
}

// Load parses args and merges them with the environment and the config file
// named by -config, if any.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()

	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetDefault(KeyDebug, false)
	c.SetDefault(KeyDataDir, "")
	c.SetDefault(KeyThreads, 1)
	c.SetDefault(KeyPerftCacheMB, 64)
	c.SetDefault(KeyEndingRule, board.EndingRuleDeclare27.String())
	c.SetDefault(KeyMaxPly, 0)
	c.SetDefault(KeyHistoryFile, "/tmp/shogicore_history.tmp")
	c.SetDefault(KeyCPUProfile, "")
	c.SetDefault(KeyUSI, false)

	fs := flag.NewFlagSet("shogicore", flag.ContinueOnError)
	configFile := fs.String(KeyConfigFile, "", "path to a yaml, toml or json config file")
	debug := fs.Bool(KeyDebug, false, "enable debug logging")
	dataDir := fs.String(KeyDataDir, "", "directory holding the database (default: platform data dir)")
	threads := fs.Int(KeyThreads, 1, "goroutines used by perft")
	cacheMB := fs.Int(KeyPerftCacheMB, 64, "perft cache size in MB (0 disables)")
	endingRule := fs.String(KeyEndingRule, board.EndingRuleDeclare27.String(), "ending rule: none or declare27")
	maxPly := fs.Int(KeyMaxPly, 0, "ply limit of a game (0 is unlimited)")
	historyFile := fs.String(KeyHistoryFile, "/tmp/shogicore_history.tmp", "readline history file")
	cpuProfile := fs.String(KeyCPUProfile, "", "write a CPU profile to this file")
	usi := fs.Bool(KeyUSI, false, "speak the protocol on stdin/stdout instead of the shell")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *configFile != "" {
		c.SetConfigFile(*configFile)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", *configFile, err)
		}
	}

	// Only flags given on the command line override the other sources.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case KeyDebug:
			c.Set(KeyDebug, *debug)
		case KeyDataDir:
			c.Set(KeyDataDir, *dataDir)
		case KeyThreads:
			c.Set(KeyThreads, *threads)
		case KeyPerftCacheMB:
			c.Set(KeyPerftCacheMB, *cacheMB)
		case KeyEndingRule:
			c.Set(KeyEndingRule, *endingRule)
		case KeyMaxPly:
			c.Set(KeyMaxPly, *maxPly)
		case KeyHistoryFile:
			c.Set(KeyHistoryFile, *historyFile)
		case KeyCPUProfile:
			c.Set(KeyCPUProfile, *cpuProfile)
		case KeyUSI:
			c.Set(KeyUSI, *usi)
		}
	})

	return c.validate()
}

func (c *Config) validate() error {
	if _, err := ParseEndingRule(c.GetString(KeyEndingRule)); err != nil {
		return err
	}
	if c.GetInt(KeyThreads) < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyThreads, c.GetInt(KeyThreads))
	}
	if c.GetInt(KeyPerftCacheMB) < 0 {
		return fmt.Errorf("%s must not be negative", KeyPerftCacheMB)
	}
	if c.GetInt(KeyMaxPly) < 0 {
		return fmt.Errorf("%s must not be negative", KeyMaxPly)
	}
	return nil
}

// ParseEndingRule converts a rule name to board.EndingRule.
func ParseEndingRule(name string) (board.EndingRule, error) {
	switch strings.ToLower(name) {
	case board.EndingRuleNone.String():
		return board.EndingRuleNone, nil
	case board.EndingRuleDeclare27.String():
		return board.EndingRuleDeclare27, nil
	}
	return board.EndingRuleNone, fmt.Errorf("unknown ending rule %q", name)
}

// StateConfig returns the per-game settings for board.State.
func (c *Config) StateConfig() board.StateConfig {
	rule, _ := ParseEndingRule(c.GetString(KeyEndingRule))
	return board.StateConfig{
		EndingRule: rule,
		MaxPly:     c.GetInt(KeyMaxPly),
	}
}

// SanitizedSettings returns every setting for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
