package llm

import (
	"context"
	"testing"

	"github.com/rfenwick/relayd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_NoCredential(t *testing.T) {
	c, err := New("http://localhost:11434/v1/", "", "llama3.1:8b")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "hello"},
	})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestNew_WithCredential(t *testing.T) {
	c, err := New("http://localhost:11434/v1/", "test-key", "llama3.1:8b")
	require.NoError(t, err)
	assert.NotNil(t, c.model)
}
