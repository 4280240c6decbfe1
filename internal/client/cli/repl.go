package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Upload(ctx context.Context, args []string) error
	Cancel(ctx context.Context) error
	Status(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
}

const helpText = "Available commands: upload <path>, cancel, status, (l)ist, refresh, delete <n|key>, exit"

// runREPL starts a simple read–eval–print loop for the gophdrop CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and passes the remaining tokens to the handler. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
// Handlers report their own errors to the user, so their return values are
// ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gd> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "upload", "u":
			_ = a.Upload(ctx, args)

		case "cancel":
			_ = a.Cancel(ctx)

		case "status":
			_ = a.Status(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "delete", "rm":
			_ = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
