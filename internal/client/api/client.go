// Package api is a small HTTP client for the relay's public endpoints.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/faithchat/relay/internal/common"
)

const (
	eventDone     = "[DONE]"
	eventErrorTag = "__ERROR__ "
)

// ErrStreamTruncated is returned when an event stream ends without the
// terminal [DONE] event.
var ErrStreamTruncated = errors.New("stream ended unexpectedly")

// Error is a non-2xx response from the relay.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("relay: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("relay: %d %s", e.Status, e.Detail)
}

// StreamError is an error the relay reported inside an event stream after
// the response had already started.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return "relay stream: " + e.Message }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type credentials struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type Ack struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
	Token     string `json:"token,omitempty"`
}

func (c *Client) Register(ctx context.Context, identity, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", credentials{identity, password}, &out)
	return out.Token, err
}

func (c *Client) Login(ctx context.Context, identity, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{identity, password}, &out)
	return out.Token, err
}

func (c *Client) Forgot(ctx context.Context, identity string) (Ack, error) {
	var out Ack
	err := c.do(ctx, http.MethodPost, "/auth/forgot", "", map[string]string{"identity": identity}, &out)
	return out, err
}

func (c *Client) Reset(ctx context.Context, token, newPassword string) (Ack, error) {
	var out Ack
	err := c.do(ctx, http.MethodPost, "/auth/reset", "", map[string]string{"token": token, "new_password": newPassword}, &out)
	return out, err
}

func (c *Client) Whoami(ctx context.Context, token string) (string, error) {
	var out struct {
		Identity string `json:"identity"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/whoami", token, nil, &out)
	return out.Identity, err
}

type chatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
	Stream  bool      `json:"stream"`
}

// Chat sends one message and returns the whole reply.
func (c *Client) Chat(ctx context.Context, token, message string, history []Message) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	err := c.do(ctx, http.MethodPost, "/chat", token, chatRequest{Message: message, History: history}, &out)
	return out.Reply, err
}

// ChatStream sends one message and calls onChunk for every streamed piece
// of the reply. It returns the assembled reply.
func (c *Client) ChatStream(ctx context.Context, token, message string, history []Message, onChunk func(string)) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/chat", token, chatRequest{Message: message, History: history, Stream: true})
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", decodeError(resp)
	}

	var reply strings.Builder
	err = readEvents(resp.Body, func(data string) bool {
		reply.WriteString(data)
		if onChunk != nil {
			onChunk(data)
		}
		return true
	})
	return reply.String(), err
}

// readEvents parses a text/event-stream body. Consecutive data lines form
// one event joined by newlines; a blank line dispatches it.
func readEvents(r io.Reader, emit func(string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line != "" {
			if v, ok := strings.CutPrefix(line, "data:"); ok {
				lines = append(lines, v)
			}
			continue
		}
		if len(lines) == 0 {
			continue
		}
		data := strings.Join(lines, "\n")
		lines = lines[:0]

		switch {
		case data == eventDone:
			return nil
		case strings.HasPrefix(data, eventErrorTag):
			return &StreamError{Message: strings.TrimPrefix(data, eventErrorTag)}
		}
		if !emit(data) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return ErrStreamTruncated
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var body struct {
		Detail any `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)

	e := &Error{Status: resp.StatusCode}
	switch d := body.Detail.(type) {
	case string:
		e.Detail = d
	case nil:
	default:
		b, _ := json.Marshal(d)
		e.Detail = string(b)
	}
	return e
}
