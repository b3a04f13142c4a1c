// Package repo holds the conversation repository: every operation loads the
// full collection, mutates or reads it, and writes it back.
package repo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rfenwick/relayd/internal/models"
	"github.com/rfenwick/relayd/internal/store"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("conversation not found")

// Repository serializes all access to the store with a single mutex. The
// store is one document, so finer-grained locks would still race on the
// shared save; the lock closes the last-write-wins window between concurrent
// load/save cycles.
type Repository struct {
	mu     sync.Mutex
	store  store.Store
	logger *zap.Logger
}

func New(st store.Store, logger *zap.Logger) *Repository {
	return &Repository{store: st, logger: logger}
}

// ListSummaries returns id, title and updatedAt for every conversation,
// most recently updated first. Ties keep store order.
func (r *Repository) ListSummaries() ([]models.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(st.Conversations))
	for _, conv := range st.Conversations {
		summaries = append(summaries, models.ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (r *Repository) Get(id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	conv := st.Find(id)
	if conv == nil {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (r *Repository) Create() (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     models.DefaultTitle,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.Conversations = append(st.Conversations, conv)
	if err := r.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to persist new conversation: %w", err)
	}

	r.logger.Debug("created conversation", zap.String("id", conv.ID))
	return conv, nil
}

// Rename sets a new title. An empty title is a no-op: the conversation is
// returned unchanged and nothing is persisted.
func (r *Repository) Rename(id, title string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	conv := st.Find(id)
	if conv == nil {
		return nil, ErrNotFound
	}
	if title == "" {
		return conv, nil
	}

	conv.Title = title
	conv.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to persist rename: %w", err)
	}
	return conv, nil
}

func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return err
	}

	kept := st.Conversations[:0]
	for _, conv := range st.Conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	if len(kept) == len(st.Conversations) {
		return ErrNotFound
	}
	st.Conversations = kept

	if err := r.store.Save(st); err != nil {
		return fmt.Errorf("failed to persist delete: %w", err)
	}
	r.logger.Debug("deleted conversation", zap.String("id", id))
	return nil
}

// Update runs fn on the conversation under the repository lock and persists
// the result. The load, the mutation and the save form one critical section,
// so concurrent turns append rather than overwrite each other.
func (r *Repository) Update(id string, fn func(*models.Conversation) error) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	conv := st.Find(id)
	if conv == nil {
		return nil, ErrNotFound
	}
	if err := fn(conv); err != nil {
		return nil, err
	}
	if err := r.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to persist update: %w", err)
	}
	return conv, nil
}
