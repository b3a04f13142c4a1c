package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rfenwick/relayd/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    pos INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    conversation_id TEXT NOT NULL,
    pos INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    PRIMARY KEY (conversation_id, pos),
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);`

// SQLiteStore offers the same whole-document contract as FileStore over a
// SQLite database: Save replaces every row in one transaction, Load reads
// everything back in insertion order. The pos columns carry the canonical
// ordering across round-trips.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (*models.Store, error) {
	rows, err := s.db.Query(`
        SELECT id, title, created_at, updated_at
        FROM conversations
        ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()

	st := &models.Store{}
	for rows.Next() {
		var conv models.Conversation
		var createdAt, updatedAt string
		if err := rows.Scan(&conv.ID, &conv.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if conv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if conv.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		st.Conversations = append(st.Conversations, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}

	for _, conv := range st.Conversations {
		msgs, err := s.loadMessages(conv.ID)
		if err != nil {
			return nil, err
		}
		conv.Messages = msgs
	}
	return st, nil
}

func (s *SQLiteStore) loadMessages(conversationID string) ([]models.Message, error) {
	rows, err := s.db.Query(`
        SELECT role, content
        FROM messages
        WHERE conversation_id = ?
        ORDER BY pos`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) Save(st *models.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}

	for i, conv := range st.Conversations {
		_, err := tx.Exec(`
            INSERT INTO conversations (pos, id, title, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?)`,
			i, conv.ID, conv.Title,
			conv.CreatedAt.Format(time.RFC3339Nano),
			conv.UpdatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save conversation %s: %w", conv.ID, err)
		}
		for j, msg := range conv.Messages {
			_, err := tx.Exec(`
                INSERT INTO messages (conversation_id, pos, role, content)
                VALUES (?, ?, ?, ?)`,
				conv.ID, j, msg.Role, msg.Content)
			if err != nil {
				return fmt.Errorf("failed to save message: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
