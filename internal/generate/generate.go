// Package generate wraps the Gemini API as the assistant's fallback answer
// path. It is invoked only when no FAQ record clears the match threshold.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/udyogmitra/mitra/internal/log"
)

// personaPreamble fixes the assistant's identity and domain. The literal
// user query is appended; nothing else reaches the model.
const personaPreamble = `You are an expert assistant for Micro, Small, and Medium Enterprises (MSMEs) in India. Keep your answers concise, helpful, and easy to understand. User query: %q`

var (
	// ErrGeneration indicates the model call failed. Callers degrade to a
	// placeholder answer; there is no automatic retry.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyResponse indicates the model returned no text at all.
	ErrEmptyResponse = errors.New("empty model response")
)

// ChunkFunc receives each partial text chunk as it arrives. Returning an
// error aborts the stream.
type ChunkFunc func(ctx context.Context, text string) error

// Config configures a Generator.
type Config struct {
	APIKey string
	Model  string // e.g. "gemini-2.5-flash"

	// Timeout bounds a single generation call, streaming included.
	// Zero uses DefaultTimeout.
	Timeout time.Duration

	// Limiter rate-limits outgoing model calls. Nil uses a default of
	// 10 req/s with a burst of 30.
	Limiter *rate.Limiter

	Logger log.Logger
}

// DefaultTimeout bounds a generation call when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Generator produces fallback answers from Gemini.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  log.Logger
}

// New creates a Generator.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Generator{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// buildPrompt combines the fixed persona preamble with the literal query.
func buildPrompt(query string) string {
	return fmt.Sprintf(personaPreamble, query)
}

// Stream generates an answer for query, delivering partial text to onChunk
// in arrival order. onChunk may be nil to collect without streaming. The
// concatenated full text is returned either way.
//
// One call, one answer: on any failure the wrapped error is returned and
// the caller substitutes its user-facing placeholder. Partial text
// delivered before a mid-stream failure is reflected in the returned
// string so callers can keep what the user already saw.
func (g *Generator) Stream(ctx context.Context, query string, onChunk ChunkFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", ErrGeneration, err)
	}

	start := time.Now()
	var full strings.Builder

	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(buildPrompt(query)), nil) {
		if err != nil {
			return full.String(), fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		full.WriteString(text)
		if onChunk != nil {
			if cbErr := onChunk(ctx, text); cbErr != nil {
				return full.String(), fmt.Errorf("%w: stream callback: %w", ErrGeneration, cbErr)
			}
		}
	}

	if full.Len() == 0 {
		return "", fmt.Errorf("%w: %w", ErrGeneration, ErrEmptyResponse)
	}

	g.logger.Debug("generation complete",
		"model", g.model,
		"chars", full.Len(),
		"elapsed", time.Since(start))
	return full.String(), nil
}

// Generate is the non-streaming convenience wrapper around Stream.
func (g *Generator) Generate(ctx context.Context, query string) (string, error) {
	return g.Stream(ctx, query, nil)
}
