package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udyogmitra/mitra/internal/log"
)

var (
	// ErrFetchFailed indicates the feed endpoint returned a non-success
	// status or the request itself failed.
	ErrFetchFailed = errors.New("feed fetch failed")

	// ErrMissingColumns indicates the feed is missing required columns.
	ErrMissingColumns = errors.New("feed missing required columns")

	// ErrWrongSheet indicates the configured URL points at the other
	// record type's sheet (FAQ URL serving video columns or vice versa).
	ErrWrongSheet = errors.New("feed URL points at the wrong sheet")
)

// Required column headers for each record type. These are the published
// sheet's headers, owned by the feed, not by this code.
var (
	faqColumns   = []string{"Question", "Solution", "Key Words"}
	videoColumns = []string{"Domain", "Query", "Video Description", "Video Link", "Keywords"}
)

// Feed fetches and parses published-sheet CSV record feeds.
type Feed struct {
	client *http.Client
	logger log.Logger
}

// NewFeed creates a Feed with the given per-request timeout.
func NewFeed(timeout time.Duration, logger log.Logger) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// row is one CSV record keyed by header.
type row map[string]string

// fetchRows downloads the CSV at url and returns its rows. Rows shorter
// than the header are tolerated; missing cells read as empty strings.
func (f *Feed) fetchRows(ctx context.Context, url string) ([]row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", ErrFetchFailed, resp.StatusCode, url)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // published sheets pad rows inconsistently

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil // empty feed, not an error
		}
		return nil, fmt.Errorf("reading feed header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\uFEFF"))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A single malformed line degrades gracefully, never crashes
			// the load.
			f.logger.Warn("skipping malformed feed row", "error", err)
			continue
		}

		r := make(row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				r[h] = record[i]
			} else {
				r[h] = ""
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// checkColumns verifies every required column is present in the feed.
func checkColumns(rows []row, required []string) error {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, col := range required {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// hasColumns reports whether the feed carries every named column.
func hasColumns(rows []row, cols ...string) bool {
	if len(rows) == 0 {
		return false
	}
	for _, col := range cols {
		if _, ok := rows[0][col]; !ok {
			return false
		}
	}
	return true
}

// complete reports whether every required cell of the row is non-blank.
// Partially populated rows are dropped silently at load time.
func (r row) complete(required []string) bool {
	for _, col := range required {
		if strings.TrimSpace(r[col]) == "" {
			return false
		}
	}
	return true
}

// FAQs fetches and parses the FAQ feed.
func (f *Feed) FAQs(ctx context.Context, url string) ([]FAQ, error) {
	rows, err := f.fetchRows(ctx, url)
	if err != nil {
		return nil, err
	}

	// Cross-configuration guard: the video sheet served on the FAQ URL.
	if hasColumns(rows, "Video Link", "Video Description") {
		return nil, fmt.Errorf("%w: FAQ feed is serving video columns", ErrWrongSheet)
	}
	if err := checkColumns(rows, faqColumns); err != nil {
		return nil, err
	}

	faqs := make([]FAQ, 0, len(rows))
	for _, r := range rows {
		if !r.complete(faqColumns) {
			continue
		}
		domain := strings.TrimSpace(r["Domain"])
		if domain == "" {
			domain = DefaultDomain
		}
		faqs = append(faqs, FAQ{
			Question: strings.TrimSpace(r["Question"]),
			Solution: strings.TrimSpace(r["Solution"]),
			Keywords: splitKeywords(r["Key Words"]),
			Domain:   domain,
		})
	}

	f.logger.Info("loaded FAQ records", "count", len(faqs), "rows", len(rows))
	return faqs, nil
}

// Videos fetches and parses the video feed.
func (f *Feed) Videos(ctx context.Context, url string) ([]Video, error) {
	rows, err := f.fetchRows(ctx, url)
	if err != nil {
		return nil, err
	}

	// Cross-configuration guard: the FAQ sheet served on the video URL.
	if hasColumns(rows, "Question", "Solution") {
		return nil, fmt.Errorf("%w: video feed is serving FAQ columns", ErrWrongSheet)
	}
	if err := checkColumns(rows, videoColumns); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(rows))
	for _, r := range rows {
		if !r.complete(videoColumns) {
			continue
		}
		domain := strings.TrimSpace(r["Domain"])
		if domain == "" {
			domain = DefaultDomain
		}
		videos = append(videos, Video{
			ID:          "video-" + uuid.NewString(),
			Domain:      domain,
			Title:       strings.TrimSpace(r["Query"]),
			Description: strings.TrimSpace(r["Video Description"]),
			Link:        strings.TrimSpace(r["Video Link"]),
			Keywords:    splitKeywords(r["Keywords"]),
		})
	}

	f.logger.Info("loaded video records", "count", len(videos), "rows", len(rows))
	return videos, nil
}
