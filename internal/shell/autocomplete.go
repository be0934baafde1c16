package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/hailam/shogicore/internal/board"
)

var commandNames = []string{
	"usi", "isready", "usinewgame", "position", "go", "divide", "d", "moves",
	"do", "undo", "repetition", "declare", "hash", "random", "save", "load",
	"games", "help", "quit", "exit",
}

// commandArgs lists fixed argument words per command.
var commandArgs = map[string][]string{
	"position":   {"startpos", "sfen", "moves"},
	"go":         {"perft"},
	"moves":      {"drops", "captures", "promotions"},
	"repetition": {"strict"},
}

// completer implements readline.AutoCompleter. Arguments of "do" complete to
// the legal moves of the current position.
type completer struct {
	sc *ShellController
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	if len(fields) > 0 && !endsWithSpace {
		prefix = fields[len(fields)-1]
	}

	var completions []string
	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		completions = commandNames
	} else if fields[0] == "do" {
		completions = c.legalMoves()
	} else {
		completions = commandArgs[fields[0]]
	}

	return completionSuffixes(completions, prefix), len(prefix)
}

func (c *completer) legalMoves() []string {
	if c.sc == nil || c.sc.usi == nil {
		return nil
	}
	moves := c.sc.usi.State().GenerateLegalMoves().Slice()
	return lo.Map(moves, func(m board.Move32, _ int) string { return m.String() })
}

// completionSuffixes returns what must be appended to prefix for each
// matching candidate.
func completionSuffixes(candidates []string, prefix string) [][]rune {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]))
		}
	}
	return matches
}
