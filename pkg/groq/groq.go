// Package groq wraps the Groq chat-completion API behind a small client.
// Groq speaks the OpenAI wire protocol, so the client is built on go-openai
// with the base URL pointed at Groq.
package groq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Options are the generation parameters sent with every completion.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopP        float32
	// Timeout bounds the whole request including the stream drain.
	Timeout time.Duration
}

// DefaultOptions returns the generation parameters the chat pipeline uses.
func DefaultOptions() Options {
	return Options{
		Model:       "llama3-8b-8192",
		Temperature: 0.7,
		MaxTokens:   1024,
		TopP:        1,
		Timeout:     2 * time.Minute,
	}
}

// Client produces chat completions.
type Client struct {
	inner *openai.Client
	opts  Options
}

// New creates a Client. baseURL may be empty to use DefaultBaseURL.
func New(apiKey, baseURL string, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	return &Client{inner: openai.NewClientWithConfig(cfg), opts: opts}
}

// Complete requests a streamed completion for the system+user prompt pair
// and drains the fragment stream, in arrival order, into one string. The
// drain is synchronous; callers get the full text or an error, never a
// live stream.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	stream, err := c.inner.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		TopP:        c.opts.TopP,
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq: create stream: %w", err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("groq: stream recv: %w", err)
		}
		if len(resp.Choices) > 0 {
			b.WriteString(resp.Choices[0].Delta.Content)
		}
	}
	return b.String(), nil
}
