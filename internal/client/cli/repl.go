package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. App satisfies it; tests
// can provide a lightweight stub.
type execIface interface {
	available() []string
	dispatch(ctx context.Context, name string, args []string) (bool, error)
}

// runREPL reads commands from reader until EOF, "exit" or "quit". Command
// prompts share the same reader so no input is lost between them.
//
// The prompt shows the current status (from statusFn). "help" lists only the
// commands available in the current session state and role. Errors from
// commands are reported by the command itself; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("hv %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: " + strings.Join(append(a.available(), "help", "exit"), ", "))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if ctx.Err() != nil {
				return
			}
			if known, _ := a.dispatch(ctx, cmd, args); !known {
				printlnFn("Unknown command:", cmd)
			}
		}
	}
}
