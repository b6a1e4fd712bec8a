// Package assistant implements the per-turn dispatch policy: answer from
// the curated FAQ set when a match clears threshold, fall back to the
// generative model otherwise, and augment every answer with matching
// videos using the same original query.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/generate"
	"github.com/udyogmitra/mitra/internal/log"
	"github.com/udyogmitra/mitra/internal/match"
	"github.com/udyogmitra/mitra/internal/team"
)

// GenerationErrorMessage is the literal user-facing answer when the
// generative fallback fails. The "Error:" prefix keeps it distinguishable
// from real content. Failures are never retried automatically.
const GenerationErrorMessage = "Error: I'm sorry, I encountered an issue while generating a response. Please try again later."

// recordTimeout bounds a fire-and-forget persistence write.
const recordTimeout = 5 * time.Second

var (
	// ErrEmptyQuery indicates the query is blank after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStreamAborted indicates the caller's chunk callback failed.
	ErrStreamAborted = errors.New("stream aborted")
)

// TextGenerator is the generative fallback collaborator. Satisfied by
// *generate.Generator.
type TextGenerator interface {
	Stream(ctx context.Context, query string, onChunk generate.ChunkFunc) (string, error)
}

// TurnRecorder is the logging/persistence collaborator. Writes are
// fire-and-forget from the assistant's perspective: failures are logged,
// never surfaced to the user.
type TurnRecorder interface {
	SaveTurn(ctx context.Context, turn *Turn) error
	SaveFeedback(ctx context.Context, fb *Feedback) error
}

// Options are the per-turn ranking parameters.
type Options struct {
	FAQMinScore     float64
	FAQMaxResults   int
	VideoMinScore   float64
	VideoMaxResults int
}

// DefaultOptions returns the chat-turn defaults: top 2 FAQs and top 3
// videos, both above score 1.
func DefaultOptions() Options {
	return Options{
		FAQMinScore:     1,
		FAQMaxResults:   2,
		VideoMinScore:   1,
		VideoMaxResults: 3,
	}
}

// Config contains required parameters for an Assistant.
type Config struct {
	Catalog   *catalog.Catalog
	Generator TextGenerator
	Recorder  TurnRecorder // nil = turns are not persisted
	Logger    log.Logger
	Options   Options // zero value uses DefaultOptions

	// BackgroundCtx outlives individual requests; it bounds the
	// fire-and-forget persistence writes. WG tracks those goroutines so
	// the caller can drain them at shutdown.
	BackgroundCtx context.Context //nolint:containedctx // app lifecycle, not a request context
	WG            *sync.WaitGroup
}

func (cfg Config) validate() error {
	if cfg.Catalog == nil {
		return errors.New("catalog is required")
	}
	if cfg.Generator == nil {
		return errors.New("generator is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Assistant executes chat turns. It is stateless across turns; the record
// sets it ranks against are read-only, so it is safe for concurrent use.
type Assistant struct {
	catalog   *catalog.Catalog
	generator TextGenerator
	recorder  TurnRecorder
	logger    log.Logger
	opts      Options

	bgCtx context.Context //nolint:containedctx // app lifecycle, not a request context
	wg    *sync.WaitGroup
}

// New creates an Assistant.
func New(cfg Config) (*Assistant, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := cfg.Options
	if opts.FAQMaxResults <= 0 {
		opts = DefaultOptions()
	}

	bgCtx := cfg.BackgroundCtx
	if bgCtx == nil {
		bgCtx = context.Background()
	}
	wg := cfg.WG
	if wg == nil {
		wg = &sync.WaitGroup{}
	}

	return &Assistant{
		catalog:   cfg.Catalog,
		generator: cfg.Generator,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		opts:      opts,
		bgCtx:     bgCtx,
		wg:        wg,
	}, nil
}

// Respond executes one chat turn. Partial answer text is delivered to
// onChunk as it becomes available (the FAQ path delivers its composed
// answer as a single chunk, so both paths stream uniformly); onChunk may
// be nil. The completed Turn is returned after the answer is final and
// video augmentation has run.
func (a *Assistant) Respond(ctx context.Context, user team.Member, query string, onChunk generate.ChunkFunc) (*Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	turn := &Turn{
		ID:       uuid.New(),
		UserID:   user.ID,
		UserName: user.Name,
		Query:    query,
	}

	faqMatches := match.Rank(query, a.catalog.FAQs(), match.Options{
		MinScore:   a.opts.FAQMinScore,
		MaxResults: a.opts.FAQMaxResults,
	})

	if len(faqMatches) > 0 {
		turn.IsFAQResult = true
		for _, m := range faqMatches {
			turn.MatchedFAQs = append(turn.MatchedFAQs, m.Record)
		}
		turn.Response = composeFAQAnswer(faqMatches)

		if onChunk != nil {
			if err := onChunk(ctx, turn.Response); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrStreamAborted, err)
			}
		}
	} else {
		text, err := a.generator.Stream(ctx, query, onChunk)
		if err != nil {
			// Degrade to the literal placeholder; the turn still completes
			// and is still logged.
			a.logger.Warn("generation failed, answering with placeholder",
				"error", err, "query", query)
			text = GenerationErrorMessage
			if onChunk != nil {
				// Best effort: streaming consumers should see the
				// placeholder too.
				_ = onChunk(ctx, text)
			}
		}
		turn.Response = text
	}

	// Video augmentation always runs against the same original query,
	// independent of which path produced the answer.
	videoMatches := match.Rank(query, a.catalog.Videos(), match.Options{
		MinScore:   a.opts.VideoMinScore,
		MaxResults: a.opts.VideoMaxResults,
	})
	for _, m := range videoMatches {
		turn.Videos = append(turn.Videos, m.Record)
	}

	turn.Timestamp = time.Now().UTC()
	a.recordTurn(turn)
	return turn, nil
}

// composeFAQAnswer renders the top FAQ as header plus solution, with any
// further matches listed as related questions.
func composeFAQAnswer(matches []match.Scored[catalog.FAQ]) string {
	var b strings.Builder
	top := matches[0].Record
	b.WriteString("I found some information that might help:\n\n")
	b.WriteString("**" + top.Question + "**\n")
	b.WriteString(top.Solution)

	if len(matches) > 1 {
		b.WriteString("\n\nHere are some other related questions:")
		for _, m := range matches[1:] {
			b.WriteString("\n- " + m.Record.Question)
		}
	}
	return b.String()
}

// recordTurn hands the completed turn to the persistence collaborator
// without blocking the user-visible answer.
func (a *Assistant) recordTurn(turn *Turn) {
	if a.recorder == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(a.bgCtx, recordTimeout)
		defer cancel()
		if err := a.recorder.SaveTurn(ctx, turn); err != nil {
			a.logger.Warn("recording turn failed", "error", err, "turn_id", turn.ID)
		}
	}()
}

// RecordFeedback stores a feedback record with the same fire-and-forget
// policy as turns.
func (a *Assistant) RecordFeedback(fb Feedback) {
	if a.recorder == nil {
		return
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(a.bgCtx, recordTimeout)
		defer cancel()
		if err := a.recorder.SaveFeedback(ctx, &fb); err != nil {
			a.logger.Warn("recording feedback failed", "error", err)
		}
	}()
}

// Wait drains in-flight persistence writes. Called at shutdown.
func (a *Assistant) Wait() {
	a.wg.Wait()
}
