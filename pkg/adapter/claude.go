package adapter

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
)

// ClaudeClient implements Reasoner on the Anthropic Messages API.
type ClaudeClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

type ClaudeOption func(*ClaudeClient)

func WithClaudeModel(model anthropic.Model) ClaudeOption {
	return func(c *ClaudeClient) {
		c.model = model
	}
}

// NewClaude creates a Claude-backed reasoner
func NewClaude(apiKey string, opts ...ClaudeOption) *ClaudeClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	c := &ClaudeClient{
		client:    &client,
		model:     anthropic.ModelClaude3_5Sonnet20241022,
		maxTokens: 1024,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *ClaudeClient) Reason(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to call claude")
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			text := block.AsText()
			if text.Text != "" {
				return text.Text, nil
			}
		}
	}

	return "", goerr.New("no text block in claude response")
}
