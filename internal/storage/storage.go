package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/shogicore/internal/board"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Storage key prefixes
const (
	prefixPerft = "perft/"
	prefixGame  = "game/"
)

// PerftRecord is a stored perft result.
type PerftRecord struct {
	SFEN    string    `json:"sfen"`
	Depth   int       `json:"depth"`
	Nodes   uint64    `json:"nodes"`
	Created time.Time `json:"created"`
}

// GameRecord is a stored game: the initial position and the moves played
// from it in compact form.
type GameRecord struct {
	Name    string    `json:"name"`
	SFEN    string    `json:"sfen"`
	Moves   []uint16  `json:"moves"`
	Saved   time.Time `json:"saved"`
	Outcome string    `json:"outcome,omitempty"`
}

// NewGameRecord captures the initial position and history of s.
func NewGameRecord(name string, s *board.State) *GameRecord {
	initial := s.InitialPosition()
	moves := s.Moves()
	rec := &GameRecord{
		Name:  name,
		SFEN:  initial.SFEN(),
		Moves: make([]uint16, len(moves)),
	}
	for i, m := range moves {
		rec.Moves[i] = uint16(m.Move16())
	}
	return rec
}

// State replays the record into a new state.
func (g *GameRecord) State() (*board.State, error) {
	var sb strings.Builder
	sb.WriteString(g.SFEN)
	if len(g.Moves) > 0 {
		sb.WriteString(" moves")
		for _, raw := range g.Moves {
			sb.WriteByte(' ')
			sb.WriteString(board.Move16(raw).String())
		}
	}

	s, err := board.NewStateFromSFEN(sb.String())
	if err != nil {
		return nil, fmt.Errorf("game %q: %w", g.Name, err)
	}
	return s, nil
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the database below dataDir. An empty dataDir uses
// the platform data directory.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbDir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// perftKey hashes the SFEN so that keys stay short and fixed-size.
func perftKey(sfen string, depth int) []byte {
	return fmt.Appendf(nil, "%s%016x/%d", prefixPerft, xxhash.Sum64String(sfen), depth)
}

func gameKey(name string) []byte {
	return []byte(prefixGame + name)
}

// SavePerft stores a perft result.
func (s *Storage) SavePerft(sfen string, depth int, nodes uint64) error {
	data, err := json.Marshal(&PerftRecord{SFEN: sfen, Depth: depth, Nodes: nodes, Created: time.Now()})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(sfen, depth), data)
	})
}

// LoadPerft returns a stored perft result, or ErrNotFound.
func (s *Storage) LoadPerft(sfen string, depth int) (uint64, error) {
	var rec PerftRecord

	err := s.get(perftKey(sfen, depth), &rec)
	if err != nil {
		return 0, err
	}
	// Two SFENs sharing a 64-bit hash is treated as a miss.
	if rec.SFEN != sfen || rec.Depth != depth {
		return 0, ErrNotFound
	}
	return rec.Nodes, nil
}

// SaveGame stores a game record under its name, replacing any earlier one.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.Name == "" || strings.ContainsAny(rec.Name, "/ \t\n") {
		return fmt.Errorf("invalid game name %q", rec.Name)
	}
	rec.Saved = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.Name), data)
	})
}

// LoadGame returns the game stored under name, or ErrNotFound.
func (s *Storage) LoadGame(name string) (*GameRecord, error) {
	rec := &GameRecord{}
	if err := s.get(gameKey(name), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteGame removes a stored game. Deleting a missing game is not an error.
func (s *Storage) DeleteGame(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(name))
	})
}

// ListGames returns the names of all stored games in sorted order.
func (s *Storage) ListGames() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixGame)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, prefixGame))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// get decodes the JSON value stored under key into v.
func (s *Storage) get(key []byte, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}
