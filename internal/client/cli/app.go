// Package cli is an interactive terminal client for the relay: account
// commands plus a chat loop that prints streamed replies as they arrive.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/faithchat/relay/internal/client/api"
	"github.com/faithchat/relay/internal/client/config"
)

// maxHistory bounds the turns replayed to the relay with each message.
const maxHistory = 16

// Relay is the subset of the HTTP client the commands use.
type Relay interface {
	Register(ctx context.Context, identity, password string) (string, error)
	Login(ctx context.Context, identity, password string) (string, error)
	Forgot(ctx context.Context, identity string) (api.Ack, error)
	Reset(ctx context.Context, token, newPassword string) (api.Ack, error)
	Whoami(ctx context.Context, token string) (string, error)
	Chat(ctx context.Context, token, message string, history []api.Message) (string, error)
	ChatStream(ctx context.Context, token, message string, history []api.Message, onChunk func(string)) (string, error)
}

type App struct {
	relay   Relay
	timeout time.Duration
	stream  bool
	reader  *bufio.Reader
	out     io.Writer

	token    string
	identity string
	history  []api.Message
}

func NewApp(c *config.Config) *App {
	client := api.New(c.ServerURL, &http.Client{})
	return newApp(client, c, os.Stdin, os.Stdout)
}

func newApp(relay Relay, c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		relay:   relay,
		timeout: c.RequestTimeout,
		stream:  c.Stream,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the relay chat CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.identity == "" {
		return "guest"
	}
	return a.identity
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *App) remember(role, content string) {
	a.history = append(a.history, api.Message{Role: role, Content: content})
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}
}

func (a *App) report(err error) error {
	fmt.Fprintln(a.out, "Error:", err)
	return err
}
