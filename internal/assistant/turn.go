package assistant

import (
	"time"

	"github.com/google/uuid"

	"github.com/udyogmitra/mitra/internal/catalog"
)

// Turn is one user query plus its answer and metadata: the atomic unit
// handed to logging and persistence.
type Turn struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	Query    string    `json:"query"`
	Response string    `json:"response"`

	// IsFAQResult marks whether the answer came from the curated FAQ set
	// (true) or the generative fallback (false).
	IsFAQResult bool `json:"is_faq_result"`

	// MatchedFAQs are the FAQ records that produced the answer; empty on
	// the generative path.
	MatchedFAQs []catalog.FAQ `json:"matched_faqs,omitempty"`

	// Videos are suggestions attached to the answer regardless of which
	// path produced it.
	Videos []catalog.Video `json:"videos,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Vote values for feedback.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Feedback is a user's verdict on one answer.
type Feedback struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Vote      string    `json:"vote"`
	Timestamp time.Time `json:"timestamp"`
}
