package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	names []string
	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) available() []string { return f.names }

func (f *fakeExec) dispatch(_ context.Context, name string, args []string) (bool, error) {
	for _, n := range f.names {
		if n == name {
			f.calls = append(f.calls, name)
			f.args = append(f.args, args)
			return true, f.err
		}
	}
	return false, nil
}

func input(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)
	exec := &fakeExec{names: []string{"login", "cancel"}}

	runREPL(context.Background(), exec, func() string { return "(ann patient online)" },
		input("help", "", "login", "cancel a1", "foobar", "exit", "login"))

	assert.Equal(t, []string{"login", "cancel"}, exec.calls)
	assert.Equal(t, [][]string{{}, {"a1"}}, exec.args)

	text := out.text()
	assert.Contains(t, text, "hv (ann patient online)> ")
	assert.Contains(t, text, "Available commands: login, cancel, help, exit")
	assert.Contains(t, text, "Unknown command: foobar")
	assert.Contains(t, text, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{names: []string{"status"}}

	runREPL(context.Background(), exec, func() string { return "" }, input("status"))

	assert.Equal(t, []string{"status"}, exec.calls)
}

func TestRunREPL_CommandErrorDoesNotStopLoop(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{names: []string{"dashboard"}, err: errors.New("boom")}

	runREPL(context.Background(), exec, func() string { return "" }, input("dashboard", "dashboard", "quit"))

	assert.Len(t, exec.calls, 2)
}

func TestRunREPL_CancelledContext(t *testing.T) {
	capturePrintln(t)
	exec := &fakeExec{names: []string{"status"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, exec, func() string { return "" }, input("status", "status"))

	assert.Empty(t, exec.calls)
}
