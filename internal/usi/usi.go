// Package usi implements a line protocol in the style of the Universal Shogi
// Interface for driving a board.State: position setup, move application,
// perft, and the repetition and declaration queries.
package usi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hailam/shogicore/internal/board"
	"github.com/hailam/shogicore/internal/perft"
	"github.com/hailam/shogicore/internal/storage"
)

var (
	// ErrQuit is returned by Execute for the quit command.
	ErrQuit = errors.New("usi: quit")
	// ErrNoStorage is returned by save and load when no database is open.
	ErrNoStorage = errors.New("usi: storage is not available")
)

// Options configures a Handler.
type Options struct {
	Out         io.Writer
	Store       *storage.Storage // optional
	Counter     *perft.Counter   // optional; a cache-less counter is used if nil
	Threads     int
	StateConfig board.StateConfig
	Seed        []byte // 32 bytes seeds the random command; nil uses entropy
}

// USI holds the current game and answers protocol commands.
type USI struct {
	out       io.Writer
	state     *board.State
	stateCfg  board.StateConfig
	counter   *perft.Counter
	store     *storage.Storage
	threads   int
	rng       *frand.RNG
	gameStart time.Time
}

// New creates a handler positioned at the initial position.
func New(opts Options) *USI {
	u := &USI{
		out:      opts.Out,
		stateCfg: opts.StateConfig,
		counter:  opts.Counter,
		store:    opts.Store,
		threads:  max(opts.Threads, 1),
	}
	if u.out == nil {
		u.out = io.Discard
	}
	if u.counter == nil {
		u.counter = perft.NewCounter(0)
	}
	if len(opts.Seed) == 32 {
		u.rng = frand.NewCustom(opts.Seed, 1024, 12)
	} else {
		u.rng = frand.NewCustom(frand.Bytes(32), 1024, 12)
	}
	u.handleNewGame()
	return u
}

// State returns the current game state.
func (u *USI) State() *board.State {
	return u.state
}

// Run reads commands from r until EOF or quit. Command errors are reported
// as info strings and do not stop the loop.
func (u *USI) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		err := u.ExecuteLine(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			log.Debug().Err(err).Msg("command-failed")
			u.printf("info string error: %v\n", err)
		}
	}
	return scanner.Err()
}

// ExecuteLine splits line on whitespace and executes it.
func (u *USI) ExecuteLine(ctx context.Context, line string) error {
	return u.Execute(ctx, strings.Fields(line))
}

// Execute runs one command. A failing command leaves the game unchanged.
func (u *USI) Execute(ctx context.Context, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "usi":
		u.handleUSI()
	case "isready":
		u.printf("readyok\n")
	case "usinewgame":
		u.handleNewGame()
	case "position":
		return u.handlePosition(args)
	case "go":
		return u.handleGo(ctx, args)
	case "divide":
		return u.handleDivide(ctx, args)
	case "d":
		u.handleDisplay()
	case "moves":
		return u.handleMoves(args)
	case "do":
		return u.handleDo(args)
	case "undo":
		return u.handleUndo()
	case "repetition":
		u.handleRepetition(args)
	case "declare":
		u.handleDeclare()
	case "hash":
		u.printf("hash %016x board %016x\n", u.state.Hash(), u.state.BoardHash())
	case "random":
		return u.handleRandom(args)
	case "save":
		return u.handleSave(args)
	case "load":
		return u.handleLoad(args)
	case "games":
		return u.handleGames()
	case "quit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (u *USI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// handleUSI responds to the "usi" command.
func (u *USI) handleUSI() {
	u.printf("id name shogicore\n")
	u.printf("id author shogicore developers\n")
	u.printf("option name Threads type spin default %d min 1 max 256\n", u.threads)
	u.printf("usiok\n")
}

// handleNewGame resets the game to the initial position.
func (u *USI) handleNewGame() {
	u.state = board.NewState(board.StartPosition())
	u.state.SetConfig(u.stateCfg)
	u.gameStart = time.Now()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 7g7f 3c3d
//   - position sfen <sfen>
//   - position sfen <sfen> moves 7g7f
func (u *USI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or sfen")
	}
	if args[0] != "startpos" && args[0] != "sfen" {
		return fmt.Errorf("position: expected startpos or sfen, got %q", args[0])
	}

	s, err := board.NewStateFromSFEN(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}
	s.SetConfig(u.stateCfg)
	u.state = s

	log.Debug().Str("sfen", s.SFEN()).Int("ply", s.Ply(false)).Msg("position-set")
	return nil
}

// handleGo supports "go perft <depth>".
func (u *USI) handleGo(ctx context.Context, args []string) error {
	if len(args) != 2 || args[0] != "perft" {
		return errors.New("go: usage: go perft <depth>")
	}
	depth, err := strconv.Atoi(args[1])
	if err != nil || depth < 0 {
		return fmt.Errorf("go perft: invalid depth %q", args[1])
	}

	key := perftKey(u.state)
	if u.store != nil {
		if nodes, err := u.store.LoadPerft(key, depth); err == nil {
			u.printf("Nodes: %d (stored)\n", nodes)
			return nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Err(err).Msg("perft-load-failed")
		}
	}

	start := time.Now()
	nodes, err := u.counter.CountParallel(ctx, u.state, depth, u.threads)
	if err != nil {
		return fmt.Errorf("go perft: %w", err)
	}
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}

	if u.store != nil {
		if err := u.store.SavePerft(key, depth, nodes); err != nil {
			log.Err(err).Msg("perft-save-failed")
		}
	}
	return nil
}

// perftKey is the current position's SFEN with the move number reset, so
// equal positions share stored results.
func perftKey(s *board.State) string {
	pos := s.Position()
	pos.PlyOffset = 0
	return pos.SFEN()
}

func (u *USI) handleDivide(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("divide: usage: divide <depth>")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		return fmt.Errorf("divide: invalid depth %q", args[0])
	}

	counts, err := u.counter.DivideParallel(ctx, u.state, depth, u.threads)
	if err != nil {
		return fmt.Errorf("divide: %w", err)
	}

	total := lo.SumBy(counts, func(mc perft.MoveCount) uint64 { return mc.Nodes })
	for _, mc := range counts {
		u.printf("%s: %d\n", mc.Move, mc.Nodes)
	}
	u.printf("Moves: %d\nNodes: %d\n", len(counts), total)
	return nil
}

func (u *USI) handleDisplay() {
	pos := u.state.Position()
	u.printf("%s", pos.String())
	u.printf("SFEN: %s\n", pos.SFEN())
	u.printf("Hash: %016x\n", u.state.Hash())
	checkers := lo.Map(u.state.Checkers().Squares(), func(sq board.Square, _ int) string { return sq.String() })
	u.printf("Checkers: %s\n", strings.Join(checkers, " "))
}

// moveFilters select subsets of the legal moves for the moves command.
var moveFilters = map[string]func(board.Move32) bool{
	"all":        func(board.Move32) bool { return true },
	"drops":      board.Move32.IsDrop,
	"captures":   board.Move32.IsCapture,
	"promotions": board.Move32.IsPromotion,
}

func (u *USI) handleMoves(args []string) error {
	kind := "all"
	if len(args) > 0 {
		kind = args[0]
	}
	keep, ok := moveFilters[kind]
	if !ok {
		return fmt.Errorf("moves: unknown filter %q", kind)
	}

	moves := lo.Filter(u.state.GenerateLegalMoves().Slice(), func(m board.Move32, _ int) bool { return keep(m) })
	texts := lo.Map(moves, func(m board.Move32, _ int) string { return m.String() })
	u.printf("%s\n", strings.Join(texts, " "))
	u.printf("count %d\n", len(texts))
	return nil
}

func (u *USI) handleDo(args []string) error {
	if len(args) != 1 {
		return errors.New("do: usage: do <move>")
	}

	m, err := u.state.ParseMove(args[0])
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}

	switch {
	case m.IsWin():
		if u.state.Config().EndingRule != board.EndingRuleDeclare27 || !u.state.CanDeclare() {
			return errors.New("do: declaration is not available")
		}
		u.printf("result win declaration %v\n", u.state.SideToMove())
		return nil
	case m.IsNone():
		u.printf("result resign %v\n", u.state.SideToMove())
		return nil
	}

	if !u.state.IsLegal(m) {
		return fmt.Errorf("do: illegal move %s", args[0])
	}
	u.state.DoMove(m)
	u.reportGameEnd()
	return nil
}

// reportGameEnd prints a result line when the last move ended the game.
func (u *USI) reportGameEnd() {
	s := u.state
	if s.IsCheckmated() {
		u.printf("result checkmate %v\n", s.SideToMove().Other())
		return
	}
	switch rep := s.RepetitionStatus(true); rep {
	case board.Repetition, board.WinRepetition, board.LossRepetition:
		u.printf("result %v\n", rep)
		return
	}
	if s.IsOverMaxPly() {
		u.printf("result max-ply\n")
	}
}

func (u *USI) handleUndo() error {
	if u.state.Ply(false) == 0 {
		return errors.New("undo: no move to undo")
	}
	m := u.state.UndoMove()
	u.printf("undone %v\n", m)
	return nil
}

func (u *USI) handleRepetition(args []string) {
	strict := len(args) > 0 && args[0] == "strict"
	u.printf("%v\n", u.state.RepetitionStatus(strict))
}

func (u *USI) handleDeclare() {
	c := u.state.SideToMove()
	u.printf("declare %v score %d rule %v\n", u.state.CanDeclare(), u.state.DeclarationScore(c), u.state.Config().EndingRule)
}

// handleRandom plays up to n random legal moves, stopping early when the side
// to move has none.
func (u *USI) handleRandom(args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		n, err = strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("random: invalid count %q", args[0])
		}
	}

	played := make([]string, 0, n)
	for i := 0; i < n; i++ {
		moves := u.state.GenerateLegalMoves()
		if moves.Len() == 0 {
			break
		}
		m := moves.Get(u.rng.Intn(moves.Len()))
		u.state.DoMove(m)
		played = append(played, m.String())
	}

	u.printf("played %s\n", strings.Join(played, " "))
	u.reportGameEnd()
	return nil
}

func (u *USI) handleSave(args []string) error {
	if u.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("save: usage: save <name>")
	}

	rec := storage.NewGameRecord(args[0], u.state)
	if err := u.store.SaveGame(rec); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	log.Info().Str("name", rec.Name).Int("moves", len(rec.Moves)).
		Dur("played-for", time.Since(u.gameStart)).Msg("game-saved")
	u.printf("saved %s\n", rec.Name)
	return nil
}

func (u *USI) handleLoad(args []string) error {
	if u.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("load: usage: load <name>")
	}

	rec, err := u.store.LoadGame(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	s, err := rec.State()
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	s.SetConfig(u.stateCfg)
	u.state = s
	u.printf("loaded %s ply %d\n", rec.Name, s.Ply(false))
	return nil
}

func (u *USI) handleGames() error {
	if u.store == nil {
		return ErrNoStorage
	}
	names, err := u.store.ListGames()
	if err != nil {
		return err
	}
	u.printf("%s\n", strings.Join(names, " "))
	return nil
}
