package repo

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rfenwick/relayd/internal/models"
	"github.com/rfenwick/relayd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "store.json"), zap.NewNop())
	return New(fs, zap.NewNop())
}

func TestCreate_AssignsUniqueIDs(t *testing.T) {
	r := newTestRepo(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		conv, err := r.Create()
		require.NoError(t, err)
		assert.False(t, seen[conv.ID], "duplicate id %s", conv.ID)
		seen[conv.ID] = true
	}
}

func TestCreate_Defaults(t *testing.T) {
	r := newTestRepo(t)

	conv, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, conv.Title)
	assert.Empty(t, conv.Messages)
	assert.True(t, conv.UpdatedAt.Equal(conv.CreatedAt))

	got, err := r.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

func TestGet_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSummaries_SortedByUpdatedAtDesc(t *testing.T) {
	r := newTestRepo(t)

	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)
	c, err := r.Create()
	require.NoError(t, err)

	// Renaming refreshes updatedAt, pushing the conversation to the front.
	time.Sleep(5 * time.Millisecond)
	_, err = r.Rename(a.ID, "a renamed")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = r.Rename(b.ID, "b renamed")
	require.NoError(t, err)

	summaries, err := r.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, b.ID, summaries[0].ID)
	assert.Equal(t, a.ID, summaries[1].ID)
	assert.Equal(t, c.ID, summaries[2].ID)
}

func TestRename_EmptyTitleIsNoOp(t *testing.T) {
	r := newTestRepo(t)

	conv, err := r.Create()
	require.NoError(t, err)

	got, err := r.Rename(conv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, got.Title)
	assert.True(t, got.UpdatedAt.Equal(conv.UpdatedAt))
}

func TestRename_UpdatesTitleAndTimestamp(t *testing.T) {
	r := newTestRepo(t)

	conv, err := r.Create()
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	got, err := r.Rename(conv.ID, "Budget planning")
	require.NoError(t, err)
	assert.Equal(t, "Budget planning", got.Title)
	assert.True(t, got.UpdatedAt.After(conv.UpdatedAt))
}

func TestRename_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Rename("nope", "title")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	r := newTestRepo(t)

	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)

	require.NoError(t, r.Delete(a.ID))

	summaries, err := r.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, b.ID, summaries[0].ID)

	_, err = r.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_UnknownIDLeavesCollectionUnchanged(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Create()
	require.NoError(t, err)

	err = r.Delete("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	summaries, err := r.ListSummaries()
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestUpdate_PersistsMutation(t *testing.T) {
	r := newTestRepo(t)

	conv, err := r.Create()
	require.NoError(t, err)

	_, err = r.Update(conv.ID, func(c *models.Conversation) error {
		c.Messages = append(c.Messages, models.Message{Role: models.RoleUser, Content: "hi"})
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	require.NoError(t, err)

	got, err := r.Get(conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Content)
}

func TestUpdate_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Update("nope", func(c *models.Conversation) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}
