package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (p *OpenAIProvider) params(msgs []Message) openai.ChatCompletionNewParams {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    out,
		Temperature: openai.Float(p.temperature),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, msgs []Message) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.params(msgs))
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming completion. Connection and status failures
// surface from the first Next/Err pair, already classified.
func (p *OpenAIProvider) Stream(ctx context.Context, msgs []Message) (ChunkStream, error) {
	s := p.client.Chat.Completions.NewStreaming(ctx, p.params(msgs))
	return &openAIStream{s: s}, nil
}

type openAIStream struct {
	s   *ssestream.Stream[openai.ChatCompletionChunk]
	cur string
}

func (o *openAIStream) Next() bool {
	for o.s.Next() {
		chunk := o.s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			o.cur = text
			return true
		}
	}
	return false
}

func (o *openAIStream) Current() string { return o.cur }

func (o *openAIStream) Err() error { return Classify(o.s.Err()) }

func (o *openAIStream) Close() error { return o.s.Close() }
