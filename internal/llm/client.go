// Package llm adapts the external completion service: one blocking request
// per turn, full message history in, generated assistant text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rfenwick/relayd/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrNoCredential    = errors.New("no completion service credential configured")
	ErrEmptyCompletion = errors.New("completion service returned no content")
)

// SystemPrompt is the fixed instruction sent ahead of the history on every
// request.
const SystemPrompt = "You are a helpful assistant. Answer the user's " +
	"questions clearly and concisely, using the conversation so far for context."

const defaultTimeout = 60 * time.Second

// Client performs completion requests. A client built without a credential
// still constructs, so the server can serve conversation CRUD; each turn
// then fails with ErrNoCredential until a key is configured.
type Client struct {
	model   llms.Model
	timeout time.Duration
}

func New(baseURL, token, model string) (*Client, error) {
	c := &Client{timeout: defaultTimeout}
	if token == "" {
		return c, nil
	}

	m, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion backend: %w", err)
	}
	c.model = m
	return c, nil
}

// Complete sends the system prompt plus the full ordered history and returns
// the generated text. A hung upstream is cut off by the timeout; expiry is an
// error, never an empty success.
func (c *Client) Complete(ctx context.Context, history []models.Message) (string, error) {
	if c.model == nil {
		return "", ErrNoCredential
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(history)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := c.model.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}
