package cli

import (
	"context"
	"fmt"
	"strings"
)

// Ask sends message to the relay, prompting for it when empty, and prints
// the reply. Successful turns are added to the local history.
func (a *App) Ask(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		var err error
		message, err = GetMultiline(a.reader, "Your message", a.out)
		if err != nil {
			return a.report(err)
		}
		if message == "" {
			return nil
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var (
		reply string
		err   error
	)
	if a.stream {
		reply, err = a.relay.ChatStream(ctx, a.token, message, a.history, func(chunk string) {
			fmt.Fprint(a.out, chunk)
		})
		fmt.Fprintln(a.out)
	} else {
		reply, err = a.relay.Chat(ctx, a.token, message, a.history)
		if err == nil {
			fmt.Fprintln(a.out, reply)
		}
	}
	if err != nil {
		return a.report(err)
	}

	a.remember("user", message)
	a.remember("assistant", reply)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	a.history = nil
	fmt.Fprintln(a.out, "Conversation cleared")
	return nil
}
