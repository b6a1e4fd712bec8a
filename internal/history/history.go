// Package history persists chat transcripts, turn logs and feedback to
// PostgreSQL. The assistant treats it as fire-and-forget; nothing here may
// block a user-visible answer.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/udyogmitra/mitra/internal/catalog"
)

// ErrNotFound indicates the requested chat does not exist.
var ErrNotFound = errors.New("chat not found")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry, stored as JSONB inside its chat.
type Message struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Feedback  string          `json:"feedback,omitempty"`
	Videos    []catalog.Video `json:"videos,omitempty"`
}

// Chat is one conversation: the initial query, its domain label and the
// full message transcript.
type Chat struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	InitialQuery string    `json:"initial_query"`
	Domain       string    `json:"domain"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
