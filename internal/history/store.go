package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udyogmitra/mitra/internal/assistant"
	"github.com/udyogmitra/mitra/internal/log"
)

// chatCols is the standard SELECT column list for scanChat.
const chatCols = `id, user_id, user_name, initial_query, domain, messages, created_at, updated_at`

// Store manages chat, turn-log and feedback persistence backed by
// PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// SaveTurn appends one completed turn to the query log. Matched records
// are stored as JSONB alongside the answer so operators can audit why an
// answer was chosen.
func (s *Store) SaveTurn(ctx context.Context, turn *assistant.Turn) error {
	faqs, err := json.Marshal(turn.MatchedFAQs)
	if err != nil {
		return fmt.Errorf("marshaling matched FAQs: %w", err)
	}
	videos, err := json.Marshal(turn.Videos)
	if err != nil {
		return fmt.Errorf("marshaling videos: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO query_log (id, user_id, user_name, query, response, is_faq_result, matched_faqs, videos, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		turn.ID, turn.UserID, turn.UserName, turn.Query, turn.Response,
		turn.IsFAQResult, faqs, videos, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// SaveFeedback appends one feedback record.
func (s *Store) SaveFeedback(ctx context.Context, fb *assistant.Feedback) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO feedback_log (user_id, user_name, query, response, vote, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		fb.UserID, fb.UserName, fb.Query, fb.Response, fb.Vote, fb.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

// CreateChat starts a new conversation record.
func (s *Store) CreateChat(ctx context.Context, userID, userName, initialQuery, domain string, messages []Message) (*Chat, error) {
	encoded, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshaling messages: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO chats (user_id, user_name, initial_query, domain, messages)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+chatCols,
		userID, userName, initialQuery, domain, encoded,
	)
	chat, err := scanChat(row)
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return chat, nil
}

// UpdateMessages replaces a chat's transcript with the given messages.
// Transcripts are small (one user's session), so whole-replacement keeps
// the write idempotent.
func (s *Store) UpdateMessages(ctx context.Context, chatID uuid.UUID, messages []Message) (*Chat, error) {
	encoded, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshaling messages: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE chats SET messages = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+chatCols,
		chatID, encoded,
	)
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating chat %s: %w", chatID, err)
	}
	return chat, nil
}

// Chat fetches one conversation by id.
func (s *Store) Chat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+chatCols+` FROM chats WHERE id = $1`, chatID)
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching chat %s: %w", chatID, err)
	}
	return chat, nil
}

// ListChats returns a user's conversations, newest first.
func (s *Store) ListChats(ctx context.Context, userID string, limit, offset int) ([]*Chat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+chatCols+` FROM chats
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var chats []*Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// DeleteChat removes one conversation.
func (s *Store) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("deleting chat %s: %w", chatID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentQueries returns the latest logged query strings for trend
// analysis.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT query FROM query_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent queries: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scanning query: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// scanChat reads one chat row, decoding the JSONB transcript.
func scanChat(row pgx.Row) (*Chat, error) {
	var chat Chat
	var encoded []byte
	if err := row.Scan(
		&chat.ID, &chat.UserID, &chat.UserName, &chat.InitialQuery,
		&chat.Domain, &encoded, &chat.CreatedAt, &chat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(encoded) > 0 {
		if err := json.Unmarshal(encoded, &chat.Messages); err != nil {
			return nil, fmt.Errorf("decoding messages: %w", err)
		}
	}
	return &chat, nil
}
