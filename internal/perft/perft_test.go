package perft

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/shogicore/internal/board"
)

func TestCountStartPosition(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	tests := []struct {
		depth int
		nodes uint64
	}{
		{0, 1},
		{1, 30},
		{2, 900},
		{3, 25470},
	}

	for _, cacheMB := range []int{0, 1} {
		c := NewCounter(cacheMB)
		for _, tc := range tests {
			s := board.NewState(board.StartPosition())
			nodes, err := c.Count(ctx, s, tc.depth)
			is.NoErr(err)
			is.Equal(nodes, tc.nodes)
			is.Equal(s.Ply(false), 0) // state restored
		}
	}
}

func TestCountParallelMatchesSequential(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	s, err := board.NewStateFromSFEN("startpos moves 7g7f 3c3d 8h2b+")
	is.NoErr(err)

	seq, err := NewCounter(0).Count(ctx, s, 3)
	is.NoErr(err)

	par, err := NewCounter(4).CountParallel(ctx, s, 3, 4)
	is.NoErr(err)
	is.Equal(seq, par)
	is.Equal(s.Ply(false), 3)
}

func TestDivide(t *testing.T) {
	is := is.New(t)

	s := board.NewState(board.StartPosition())
	counts, err := NewCounter(0).Divide(context.Background(), s, 2)
	is.NoErr(err)
	is.Equal(len(counts), 30)

	var total uint64
	for i, mc := range counts {
		is.Equal(mc.Nodes, uint64(30)) // every first move leaves White 30 replies
		total += mc.Nodes
		if i > 0 {
			is.True(counts[i-1].Move.String() < mc.Move.String())
		}
	}
	is.Equal(total, uint64(900))
}

func TestCountCanceled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := board.NewState(board.StartPosition())
	_, err := NewCounter(0).Count(ctx, s, 4)
	is.True(err != nil)
	is.Equal(s.Ply(false), 0)

	_, err = NewCounter(0).CountParallel(ctx, s, 4, 2)
	is.True(err != nil)
}

func TestNegativeDepth(t *testing.T) {
	is := is.New(t)
	_, err := NewCounter(0).Count(context.Background(), board.NewState(board.StartPosition()), -1)
	is.Equal(err, ErrNegativeDepth)
}

func TestCacheProbeStore(t *testing.T) {
	is := is.New(t)

	c := NewCache(1)
	is.True(c.Size() > 0)
	is.Equal(c.Size()&(c.Size()-1), uint64(0)) // power of two

	_, ok := c.Probe(0xDEADBEEF, 3)
	is.True(!ok)

	c.Store(0xDEADBEEF, 3, 12345)
	nodes, ok := c.Probe(0xDEADBEEF, 3)
	is.True(ok)
	is.Equal(nodes, uint64(12345))

	_, ok = c.Probe(0xDEADBEEF, 4)
	is.True(!ok)

	c.Clear()
	_, ok = c.Probe(0xDEADBEEF, 3)
	is.True(!ok)

	var nilCache *Cache
	_, ok = nilCache.Probe(1, 1)
	is.True(!ok)
	nilCache.Store(1, 1, 1)
	is.Equal(nilCache.HitRate(), 0.0)
}
