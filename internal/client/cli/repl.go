package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Whoami(ctx context.Context) error
	Ask(ctx context.Context, message string) error
	Clear(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit". Command
// handlers prompt on the same reader, so no input is buffered away from them.
//
//	Not logged in:
//	  - register, login, forgot, reset, exit
//
//	Logged in:
//	  - ask [text]     send a message; prompts when text is omitted
//	  - clear          forget the conversation so far
//	  - whoami, logout, exit
//
// Handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("relay (%s)> ", statusFn()))
		raw, err := reader.ReadString('\n')
		line := strings.TrimSpace(raw)
		if line == "" {
			if err != nil {
				return
			}
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ask [text], clear, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, reset, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "ask", "a":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			_ = a.Ask(ctx, rest)

		case "clear":
			_ = a.Clear(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
