package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/shogicore/internal/usi"
)

func TestSplitLine(t *testing.T) {
	is := is.New(t)

	fields, err := splitLine(`position "sfen 9/9/9/9/4k4/9/9/9/4K4 b - 1" moves 5i5h`)
	is.NoErr(err)
	is.Equal(fields, []string{"position", "sfen", "9/9/9/9/4k4/9/9/9/4K4", "b", "-", "1", "moves", "5i5h"})

	fields, err = splitLine("   ")
	is.NoErr(err)
	is.Equal(len(fields), 0)

	_, err = splitLine(`position "sfen`)
	is.True(err != nil)
}

func newTestController(out *bytes.Buffer) *ShellController {
	return &ShellController{usi: usi.New(usi.Options{Out: out})}
}

func TestExecuteForwardsCommands(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	sc := newTestController(&out)
	ctx := context.Background()

	is.NoErr(sc.execute(ctx, "do 7g7f"))
	is.Equal(sc.usi.State().Ply(false), 1)
	is.NoErr(sc.execute(ctx, ""))
	is.Equal(sc.execute(ctx, "exit"), usi.ErrQuit)
	is.Equal(sc.execute(ctx, "quit"), usi.ErrQuit)
	is.True(sc.execute(ctx, "do 7g7f") != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	c := &completer{sc: newTestController(&out)}

	complete := func(text string) ([]string, int) {
		matches, n := c.Do([]rune(text), len([]rune(text)))
		var got []string
		for _, m := range matches {
			got = append(got, string(m))
		}
		return got, n
	}

	got, n := complete("rep")
	is.Equal(got, []string{"etition"})
	is.Equal(n, 3)

	got, n = complete("go ")
	is.Equal(got, []string{"perft"})
	is.Equal(n, 0)

	got, n = complete("do 7g")
	is.Equal(got, []string{"7f"})
	is.Equal(n, 2)

	got, _ = complete("moves x")
	is.Equal(len(got), 0)
}
