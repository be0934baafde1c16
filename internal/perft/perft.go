// Package perft counts the leaf nodes of the legal move tree, the standard
// cross-check for a move generator.
package perft

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/shogicore/internal/board"
)

// ErrNegativeDepth is returned for depths below zero.
var ErrNegativeDepth = errors.New("perft: negative depth")

// cancelCheckDepth is the smallest remaining depth at which the context is
// polled; shallower subtrees finish quickly.
const cancelCheckDepth = 3

// MoveCount is the node count below one root move.
type MoveCount struct {
	Move  board.Move32
	Nodes uint64
}

// Counter runs perft with an optional shared cache. It is safe for
// concurrent use.
type Counter struct {
	cache *Cache
}

// NewCounter creates a counter with a cache of cacheMB megabytes; zero
// disables caching.
func NewCounter(cacheMB int) *Counter {
	return &Counter{cache: NewCache(cacheMB)}
}

// Cache returns the counter's cache, nil if caching is disabled.
func (c *Counter) Cache() *Cache {
	return c.cache
}

// Count returns the number of leaf nodes depth plies below s. The state is
// restored before returning.
func (c *Counter) Count(ctx context.Context, s *board.State, depth int) (uint64, error) {
	if depth < 0 {
		return 0, ErrNegativeDepth
	}

	start := time.Now()
	nodes, err := c.count(ctx, s, depth)
	if err != nil {
		return 0, err
	}
	log.Debug().Int("depth", depth).Uint64("nodes", nodes).Dur("elapsed", time.Since(start)).
		Float64("cache-hit-rate", c.cache.HitRate()).Msg("perft-done")
	return nodes, nil
}

func (c *Counter) count(ctx context.Context, s *board.State, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}

	moves := s.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len()), nil
	}

	if depth >= cancelCheckDepth {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}

	hash := s.Hash()
	if nodes, ok := c.cache.Probe(hash, depth); ok {
		return nodes, nil
	}

	var nodes uint64
	for _, m := range moves.Slice() {
		s.DoMove(m)
		n, err := c.count(ctx, s, depth-1)
		s.UndoMove()
		if err != nil {
			return 0, err
		}
		nodes += n
	}

	c.cache.Store(hash, depth, nodes)
	return nodes, nil
}

// CountParallel splits the root moves across threads goroutines, each
// working on its own clone of s.
func (c *Counter) CountParallel(ctx context.Context, s *board.State, depth, threads int) (uint64, error) {
	counts, err := c.DivideParallel(ctx, s, depth, threads)
	if err != nil {
		return 0, err
	}
	if depth == 0 {
		return 1, nil
	}

	var nodes uint64
	for _, mc := range counts {
		nodes += mc.Nodes
	}
	return nodes, nil
}

// Divide returns the node count below each legal root move, sorted by move
// text.
func (c *Counter) Divide(ctx context.Context, s *board.State, depth int) ([]MoveCount, error) {
	return c.DivideParallel(ctx, s, depth, 1)
}

// DivideParallel is Divide with the root moves spread over threads goroutines.
func (c *Counter) DivideParallel(ctx context.Context, s *board.State, depth, threads int) ([]MoveCount, error) {
	if depth < 0 {
		return nil, ErrNegativeDepth
	}
	if depth == 0 {
		return nil, nil
	}
	if threads < 1 {
		threads = 1
	}

	start := time.Now()
	moves := s.GenerateLegalMoves().Slice()
	counts := make([]MoveCount, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for i, m := range moves {
		i, m := i, m
		clone := s.Clone()
		g.Go(func() error {
			clone.DoMove(m)
			n, err := c.count(ctx, clone, depth-1)
			if err != nil {
				return fmt.Errorf("perft below %v: %w", m, err)
			}
			counts[i] = MoveCount{Move: m, Nodes: n}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(counts, func(a, b MoveCount) int {
		switch as, bs := a.Move.String(), b.Move.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	})

	log.Debug().Int("depth", depth).Int("threads", threads).Int("root-moves", len(moves)).
		Dur("elapsed", time.Since(start)).Msg("perft-divide-done")
	return counts, nil
}
