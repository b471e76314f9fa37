package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/faithchat/relay/internal/client/api"
	"github.com/faithchat/relay/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	token    string
	loginErr error
	chatErr  error
	chunks   []string

	gotHistory [][]api.Message
	gotToken   string
	resetArgs  [2]string
}

func (f *fakeRelay) Register(ctx context.Context, identity, password string) (string, error) {
	return f.token, f.loginErr
}
func (f *fakeRelay) Login(ctx context.Context, identity, password string) (string, error) {
	if password != "password1" {
		return "", &api.Error{Status: 401, Detail: "Invalid credentials"}
	}
	return f.token, f.loginErr
}
func (f *fakeRelay) Forgot(ctx context.Context, identity string) (api.Ack, error) {
	return api.Ack{OK: true, Message: "If this email exists, a reset link has been sent.", Token: "rt"}, nil
}
func (f *fakeRelay) Reset(ctx context.Context, token, newPassword string) (api.Ack, error) {
	f.resetArgs = [2]string{token, newPassword}
	return api.Ack{OK: true, Message: "Password has been reset."}, nil
}
func (f *fakeRelay) Whoami(ctx context.Context, token string) (string, error) {
	return "a@x.com", nil
}
func (f *fakeRelay) Chat(ctx context.Context, token, message string, history []api.Message) (string, error) {
	f.gotToken = token
	f.gotHistory = append(f.gotHistory, history)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return strings.Join(f.chunks, ""), nil
}
func (f *fakeRelay) ChatStream(ctx context.Context, token, message string, history []api.Message, onChunk func(string)) (string, error) {
	f.gotToken = token
	f.gotHistory = append(f.gotHistory, history)
	for _, c := range f.chunks {
		onChunk(c)
	}
	return strings.Join(f.chunks, ""), f.chatErr
}

func stubPassword(t *testing.T, pw string) {
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func testApp(relay Relay, stream bool, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{RequestTimeout: time.Second, Stream: stream}
	return newApp(relay, cfg, strings.NewReader(input), &out), &out
}

func TestLoginThenStreamedAsk(t *testing.T) {
	stubPassword(t, "password1")
	relay := &fakeRelay{token: "tok", chunks: []string{"Grace ", "and peace"}}
	app, out := testApp(relay, true, "a@x.com\n")

	require.NoError(t, app.Login(context.Background()))
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "a@x.com", app.status())

	require.NoError(t, app.Ask(context.Background(), "hello"))
	require.NoError(t, app.Ask(context.Background(), "again"))

	assert.Equal(t, "tok", relay.gotToken)
	assert.Contains(t, out.String(), "Grace and peace\n")
	require.Len(t, relay.gotHistory, 2)
	assert.Empty(t, relay.gotHistory[0])
	assert.Equal(t, []api.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "Grace and peace"},
	}, relay.gotHistory[1])
}

func TestLoginRejected(t *testing.T) {
	stubPassword(t, "wrong")
	app, out := testApp(&fakeRelay{token: "tok"}, true, "a@x.com\n")

	err := app.Login(context.Background())
	require.Error(t, err)
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "Invalid credentials")
}

func TestAskFailureKeepsHistory(t *testing.T) {
	relay := &fakeRelay{chatErr: errors.New("relay: 503 Upstream auth failed")}
	app, out := testApp(relay, false, "")
	app.token = "tok"

	require.Error(t, app.Ask(context.Background(), "hi"))
	assert.Empty(t, app.history)
	assert.Contains(t, out.String(), "Error:")
}

func TestAskPromptsWhenEmpty(t *testing.T) {
	relay := &fakeRelay{chunks: []string{"ok"}}
	app, _ := testApp(relay, false, "line one\nline two\n\n")
	app.token = "tok"

	require.NoError(t, app.Ask(context.Background(), "  "))
	require.Len(t, app.history, 2)
	assert.Equal(t, "line one\nline two", app.history[0].Content)
}

func TestHistoryIsBounded(t *testing.T) {
	app, _ := testApp(&fakeRelay{}, false, "")
	for i := 0; i < maxHistory+5; i++ {
		app.remember("user", "m")
	}
	assert.Len(t, app.history, maxHistory)
}

func TestForgotAndReset(t *testing.T) {
	stubPassword(t, "newpassword")
	relay := &fakeRelay{}
	app, out := testApp(relay, false, "a@x.com\nrt\n")

	require.NoError(t, app.Forgot(context.Background()))
	assert.Contains(t, out.String(), "Reset token: rt")

	require.NoError(t, app.Reset(context.Background()))
	assert.Equal(t, [2]string{"rt", "newpassword"}, relay.resetArgs)
	assert.Contains(t, out.String(), "Password has been reset.")
}

func TestLogoutClearsSession(t *testing.T) {
	app, _ := testApp(&fakeRelay{}, false, "")
	app.signIn("a@x.com", "tok")
	app.remember("user", "x")

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Empty(t, app.history)
	assert.Equal(t, "guest", app.status())
}
