// Package shell is the interactive front end: a readline prompt that forwards
// commands to the protocol handler.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shogicore/internal/usi"
)

const helpText = `commands:
  position startpos|sfen <sfen> [moves ...]   set up a position
  do <move> | undo                            play or take back a move
  moves [drops|captures|promotions]           list legal moves
  d                                           show the board
  go perft <depth> | divide <depth>           count leaf nodes
  repetition [strict] | declare | hash        rule queries
  random <n>                                  play n random legal moves
  save <name> | load <name> | games           stored games
  usinewgame                                  reset to the initial position
  quit                                        leave the shell`

// ShellController reads lines from the terminal and executes them.
type ShellController struct {
	l   *readline.Instance
	usi *usi.USI
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController opens the terminal. newHandler builds the command
// handler around the terminal's output.
func NewShellController(historyFile string, newHandler func(out io.Writer) *usi.USI) (*ShellController, error) {
	sc := &ShellController{}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[34mshogicore>\033[0m ",
		HistoryFile:     historyFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    &completer{sc: sc},

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.usi = newHandler(l.Stdout())
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// splitLine splits a command line the way a shell would, so quoted SFEN
// strings stay in one field before being re-split by the handler.
func splitLine(line string) ([]string, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range fields {
		out = append(out, strings.Fields(f)...)
	}
	return out, nil
}

// execute runs one line. It returns usi.ErrQuit when the user asks to leave.
func (sc *ShellController) execute(ctx context.Context, line string) error {
	fields, err := splitLine(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "help", "?":
		sc.showMessage(helpText)
		return nil
	case "exit":
		return usi.ErrQuit
	}
	return sc.usi.Execute(ctx, fields)
}

// Loop reads commands until EOF, interrupt or quit, then signals sig.
func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}

		err = sc.execute(ctx, strings.TrimSpace(line))
		if errors.Is(err, usi.ErrQuit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
