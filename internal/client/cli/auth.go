package cli

import (
	"context"
	"fmt"
)

func (a *App) askCredentials() (string, string, error) {
	identity, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return "", "", err
	}
	return identity, password, nil
}

func (a *App) Register(ctx context.Context) error {
	identity, password, err := a.askCredentials()
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	token, err := a.relay.Register(ctx, identity, password)
	if err != nil {
		return a.report(err)
	}
	a.signIn(identity, token)
	fmt.Fprintln(a.out, "Registered and signed in as", identity)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	identity, password, err := a.askCredentials()
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	token, err := a.relay.Login(ctx, identity, password)
	if err != nil {
		return a.report(err)
	}
	a.signIn(identity, token)
	fmt.Fprintln(a.out, "Signed in as", identity)
	return nil
}

func (a *App) signIn(identity, token string) {
	a.identity = identity
	a.token = token
	a.history = nil
}

func (a *App) Logout(ctx context.Context) error {
	a.identity = ""
	a.token = ""
	a.history = nil
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	identity, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ack, err := a.relay.Forgot(ctx, identity)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, ack.Message)
	if ack.Token != "" {
		fmt.Fprintln(a.out, "Reset token:", ack.Token)
	}
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Reset token", a.out)
	if err != nil {
		return a.report(err)
	}
	password, err := GetPassword("New password", a.out)
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ack, err := a.relay.Reset(ctx, token, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, ack.Message)
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	identity, err := a.relay.Whoami(ctx, a.token)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, identity)
	return nil
}
