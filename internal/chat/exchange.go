// Package chat orchestrates a single conversational turn: append the user
// message, call the completion service with the full history, append the
// reply, persist.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rfenwick/relayd/internal/models"
	"github.com/rfenwick/relayd/internal/repo"
	"go.uber.org/zap"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// titleLimit bounds the auto-derived title, in runes.
const titleLimit = 30

// Completer is the completion-service boundary. The real implementation
// lives in the llm package; tests substitute their own.
type Completer interface {
	Complete(ctx context.Context, history []models.Message) (string, error)
}

type TurnResult struct {
	Role           string `json:"role"`
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
	Title          string `json:"title"`
}

type Exchange struct {
	repo      *repo.Repository
	completer Completer
	logger    *zap.Logger
}

func NewExchange(r *repo.Repository, c Completer, logger *zap.Logger) *Exchange {
	return &Exchange{repo: r, completer: c, logger: logger}
}

// SubmitTurn runs one turn. The user message is appended only in memory
// until the completion succeeds; a failed turn persists nothing, so the
// durable record never holds a user message without its reply.
func (e *Exchange) SubmitTurn(ctx context.Context, id, userText string) (*TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := e.repo.Get(id)
	if err != nil {
		return nil, err
	}

	userMsg := models.Message{Role: models.RoleUser, Content: userText}
	history := make([]models.Message, 0, len(conv.Messages)+1)
	history = append(history, conv.Messages...)
	history = append(history, userMsg)

	reply, err := e.completer.Complete(ctx, history)
	if err != nil {
		e.logger.Error("completion failed, discarding turn",
			zap.String("conversation", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to complete turn: %w", err)
	}

	updated, err := e.repo.Update(id, func(c *models.Conversation) error {
		if len(c.Messages) == 0 && c.Title == models.DefaultTitle {
			c.Title = deriveTitle(userText)
		}
		c.Messages = append(c.Messages, userMsg,
			models.Message{Role: models.RoleAssistant, Content: reply})
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Role:           models.RoleAssistant,
		Content:        reply,
		ConversationID: updated.ID,
		Title:          updated.Title,
	}, nil
}

// deriveTitle truncates the first user message to titleLimit runes, marking
// the cut with an ellipsis. Text at or under the limit is used verbatim.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "..."
}
