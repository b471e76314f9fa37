// Package llm talks to the completion provider.
package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChunkStream is pulled one text chunk at a time. Close releases the
// underlying connection and may be called at any point.
type ChunkStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// Provider produces a completion for an ordered list of messages. Errors
// are classified with Classify.
type Provider interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
	Stream(ctx context.Context, msgs []Message) (ChunkStream, error)
}
