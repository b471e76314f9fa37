package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/server/llm"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int) []llm.Message {
	out := make([]llm.Message, n)
	for i := range out {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		out[i] = llm.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return out
}

func collect(t *testing.T, ch <-chan StreamEvent) ([]string, error) {
	t.Helper()
	var chunks []string
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return chunks, nil
			}
			if ev.Err != nil {
				_, more := <-ch
				assert.False(t, more, "error must be the last event")
				return chunks, ev.Err
			}
			chunks = append(chunks, ev.Text)
		case <-time.After(2 * time.Second):
			t.Fatal("stream did not finish")
		}
	}
}

func TestBuildMessages_TruncatesHistory(t *testing.T) {
	s := NewChatService(&fakeProvider{}, ChatConfig{SystemPrompt: "SYS", HistoryLimit: 16}, nil)
	h := history(20)

	got, err := s.BuildMessages("What does the Bible say about anxiety?", h)
	require.NoError(t, err)

	want := append([]llm.Message{{Role: llm.RoleSystem, Content: "SYS"}}, h[4:]...)
	want = append(want, llm.Message{Role: llm.RoleUser, Content: "What does the Bible say about anxiety?"})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, got, 18)
}

func TestBuildMessages_ShortHistoryKept(t *testing.T) {
	s := NewChatService(&fakeProvider{}, ChatConfig{SystemPrompt: "SYS"}, nil)
	got, err := s.BuildMessages("q", history(3))
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestBuildMessages_Validation(t *testing.T) {
	s := NewChatService(&fakeProvider{}, ChatConfig{SystemPrompt: "SYS"}, nil)

	_, err := s.BuildMessages("  ", nil)
	assert.ErrorIs(t, err, common.ErrEmptyMessage)

	_, err = s.BuildMessages("q", []llm.Message{{Role: llm.RoleSystem, Content: "override"}})
	assert.ErrorIs(t, err, common.ErrInvalidRole)
	assert.ErrorIs(t, err, common.ErrorBadRequest)
}

func TestReplyAndStream_SameTruncation(t *testing.T) {
	p := &fakeProvider{reply: "ok", chunks: []string{"o", "k"}}
	s := NewChatService(p, ChatConfig{SystemPrompt: "SYS", HistoryLimit: 16}, nil)
	h := history(20)

	_, err := s.Reply(context.Background(), "a@x.com", "q", h)
	require.NoError(t, err)
	single := p.last()

	ch, err := s.Stream(context.Background(), "a@x.com", "q", h)
	require.NoError(t, err)
	_, err = collect(t, ch)
	require.NoError(t, err)
	streamed := p.last()

	if diff := cmp.Diff(single, streamed); diff != "" {
		t.Fatalf("transports built different conversations:\n%s", diff)
	}
}

func TestStream_ChunksInOrder(t *testing.T) {
	p := &fakeProvider{chunks: []string{"Cast ", "all ", "your ", "care."}}
	s := NewChatService(p, ChatConfig{SystemPrompt: "SYS"}, nil)

	ch, err := s.Stream(context.Background(), "a@x.com", "q", nil)
	require.NoError(t, err)
	chunks, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cast ", "all ", "your ", "care."}, chunks)
}

func TestStream_MidStreamErrorIsLastEvent(t *testing.T) {
	p := &fakeProvider{chunks: []string{"partial"}, streamErr: common.ErrUpstreamRateLimited}
	s := NewChatService(p, ChatConfig{}, nil)

	ch, err := s.Stream(context.Background(), "a@x.com", "q", nil)
	require.NoError(t, err)
	chunks, err := collect(t, ch)
	assert.Equal(t, []string{"partial"}, chunks)
	assert.ErrorIs(t, err, common.ErrUpstreamRateLimited)
}

func TestStream_OpenErrorIsClassified(t *testing.T) {
	p := &fakeProvider{err: common.ErrUpstreamAuth}
	s := NewChatService(p, ChatConfig{}, nil)

	_, err := s.Stream(context.Background(), "a@x.com", "q", nil)
	assert.ErrorIs(t, err, common.ErrUpstreamAuth)
}

func TestStream_StopsWhenConsumerLeaves(t *testing.T) {
	p := &fakeProvider{chunks: []string{"a", "b", "c"}, block: true}
	s := NewChatService(p, ChatConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Stream(ctx, "a@x.com", "q", nil)
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, "a", first.Text)
	cancel()

	select {
	case <-drain(ch):
	case <-time.After(2 * time.Second):
		t.Fatal("producer kept running after the consumer left")
	}
}

func drain(ch <-chan StreamEvent) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}

func TestTimeout_SurfacesAsUnavailable(t *testing.T) {
	p := &fakeProvider{block: true}
	s := NewChatService(p, ChatConfig{Timeout: 20 * time.Millisecond}, nil)

	_, err := s.Reply(context.Background(), "a@x.com", "q", nil)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)

	ch, err := s.Stream(context.Background(), "a@x.com", "q", nil)
	require.NoError(t, err)
	_, err = collect(t, ch)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}
