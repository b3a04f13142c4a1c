package models

import "time"

// Message roles. The completion service only ever sees these two plus the
// fixed system instruction the client prepends.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is the placeholder title assigned at creation. It is replaced
// at most once, when the first user message arrives.
const DefaultTitle = "New Chat"

type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationSummary is the listing view: no message bodies.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the complete persisted collection. It is always loaded and saved
// as a single document; there are no partial writes.
type Store struct {
	Conversations []*Conversation `json:"conversations"`
}

// Find returns the conversation with the given id, or nil.
func (s *Store) Find(id string) *Conversation {
	for _, c := range s.Conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}
