package services

import (
	"context"
	"errors"
	"sync"

	"github.com/faithchat/relay/internal/server/llm"
	"github.com/faithchat/relay/internal/server/models"
)

type recordingNotifier struct {
	mu    sync.Mutex
	links map[string]string
	err   error
}

func (n *recordingNotifier) NotifyReset(_ context.Context, identity, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.links == nil {
		n.links = map[string]string{}
	}
	n.links[identity] = link
	return n.err
}

type failingUsersRepo struct{ err error }

func (f failingUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.err
}
func (f failingUsersRepo) GetByIdentity(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsersRepo) UpdatePasswordHash(context.Context, string, []byte) error { return f.err }

// fakeProvider replays canned chunks and records what it was sent.
type fakeProvider struct {
	mu        sync.Mutex
	sent      [][]llm.Message
	chunks    []string
	reply     string
	err       error
	streamErr error
	block     bool
}

func (p *fakeProvider) record(msgs []llm.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msgs)
}

func (p *fakeProvider) last() []llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[len(p.sent)-1]
}

func (p *fakeProvider) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	p.record(msgs)
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.reply, p.err
}

func (p *fakeProvider) Stream(ctx context.Context, msgs []llm.Message) (llm.ChunkStream, error) {
	p.record(msgs)
	if p.err != nil {
		return nil, p.err
	}
	return &fakeStream{ctx: ctx, chunks: p.chunks, err: p.streamErr, block: p.block}, nil
}

type fakeStream struct {
	ctx    context.Context
	chunks []string
	i      int
	cur    string
	err    error
	block  bool
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.ctx.Err() != nil {
		s.err = s.ctx.Err()
		return false
	}
	if s.i < len(s.chunks) {
		s.cur = s.chunks[s.i]
		s.i++
		return true
	}
	if s.block {
		<-s.ctx.Done()
		s.err = s.ctx.Err()
	}
	return false
}

func (s *fakeStream) Current() string { return s.cur }
func (s *fakeStream) Err() error      { return s.err }
func (s *fakeStream) Close() error {
	if s.closed {
		return errors.New("closed twice")
	}
	s.closed = true
	return nil
}
