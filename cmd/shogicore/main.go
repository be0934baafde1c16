// Command shogicore is an interactive shell and line-protocol front end for
// the shogi rules core.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shogicore/internal/board"
	"github.com/hailam/shogicore/internal/config"
	"github.com/hailam/shogicore/internal/perft"
	"github.com/hailam/shogicore/internal/shell"
	"github.com/hailam/shogicore/internal/storage"
	"github.com/hailam/shogicore/internal/usi"
)

var (
	GitVersion string
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.KeyDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
	log.Debug().Interface("settings", cfg.SanitizedSettings()).Str("version", GitVersion).Msg("loaded-config")

	if cfg.GetString(config.KeyCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.KeyCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	if err := board.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("attack-tables")
	}

	// The rules core works without a database; only save, load and stored
	// perft results need one.
	store, err := storage.Open(cfg.GetString(config.KeyDataDir))
	if err != nil {
		log.Warn().Err(err).Msg("storage-unavailable")
		store = nil
	} else {
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newHandler := func(out io.Writer) *usi.USI {
		return usi.New(usi.Options{
			Out:         out,
			Store:       store,
			Counter:     perft.NewCounter(cfg.GetInt(config.KeyPerftCacheMB)),
			Threads:     cfg.GetInt(config.KeyThreads),
			StateConfig: cfg.StateConfig(),
		})
	}

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Debug().Msg("got quit signal...")
		cancel()
		close(done)
	}()

	if cfg.GetBool(config.KeyUSI) {
		go func() {
			if err := newHandler(os.Stdout).Run(ctx, os.Stdin); err != nil {
				log.Err(err).Msg("usi-loop")
			}
			sig <- syscall.SIGINT
		}()
	} else {
		sc, err := shell.NewShellController(cfg.GetString(config.KeyHistoryFile), newHandler)
		if err != nil {
			// Fatal skips deferred calls; release the database first.
			if store != nil {
				store.Close()
			}
			log.Fatal().Err(err).Msg("readline")
		}
		go sc.Loop(ctx, sig)
	}

	<-done
	log.Debug().Msg("shutting down")
}
