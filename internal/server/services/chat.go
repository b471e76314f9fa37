package services

import (
	"context"
	"strings"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/logging"
	"github.com/faithchat/relay/internal/server/llm"
)

const (
	DefaultHistoryLimit    = 16
	DefaultProviderTimeout = 30 * time.Second
)

type ChatConfig struct {
	SystemPrompt string
	HistoryLimit int
	Timeout      time.Duration
}

// StreamEvent carries either a text chunk or the error that ended the
// stream. The channel is closed after the last event.
type StreamEvent struct {
	Text string
	Err  error
}

// ChatService assembles the bounded conversation and relays it to the
// completion provider.
type ChatService struct {
	provider     llm.Provider
	systemPrompt string
	historyLimit int
	timeout      time.Duration
	logger       logging.Logger
}

func NewChatService(provider llm.Provider, cfg ChatConfig, logger logging.Logger) *ChatService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProviderTimeout
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ChatService{
		provider:     provider,
		systemPrompt: cfg.SystemPrompt,
		historyLimit: cfg.HistoryLimit,
		timeout:      cfg.Timeout,
		logger:       logger,
	}
}

// BuildMessages returns the system prompt, the last historyLimit turns of
// history and the new user message, in that order.
func (s *ChatService) BuildMessages(message string, history []llm.Message) ([]llm.Message, error) {
	if strings.TrimSpace(message) == "" {
		return nil, common.ErrEmptyMessage
	}
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			return nil, common.ErrInvalidRole
		}
	}

	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	if s.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
	return msgs, nil
}

// Reply returns the whole completion at once.
func (s *ChatService) Reply(ctx context.Context, identity, message string, history []llm.Message) (string, error) {
	msgs, err := s.BuildMessages(message, history)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.Complete(ctx, msgs)
	if err != nil {
		err = llm.Classify(err)
		s.logger.Warn(ctx, "completion failed", "identity", identity, "error", err)
		return "", err
	}
	return reply, nil
}

// Stream relays the completion chunk by chunk. The producer stops as soon
// as ctx is done; nothing is buffered beyond the chunk in flight.
func (s *ChatService) Stream(ctx context.Context, identity, message string, history []llm.Message) (<-chan StreamEvent, error) {
	msgs, err := s.BuildMessages(message, history)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)

	stream, err := s.provider.Stream(callCtx, msgs)
	if err != nil {
		cancel()
		err = llm.Classify(err)
		s.logger.Warn(ctx, "completion stream failed", "identity", identity, "error", err)
		return nil, err
	}

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer cancel()
		defer stream.Close()

		for stream.Next() {
			select {
			case out <- StreamEvent{Text: stream.Current()}:
			case <-ctx.Done():
				s.logger.Debug(ctx, "stream consumer gone", "identity", identity)
				return
			}
		}

		if err := stream.Err(); err != nil {
			err = llm.Classify(err)
			s.logger.Warn(ctx, "completion stream failed", "identity", identity, "error", err)
			select {
			case out <- StreamEvent{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}
