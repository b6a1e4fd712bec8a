package catalog

import (
	"context"

	"github.com/udyogmitra/mitra/internal/log"
)

// Catalog holds the loaded record sets for one session. It is populated
// once by Load and read-only afterwards, so concurrent ranking needs no
// locking.
type Catalog struct {
	faqs   []FAQ
	videos []Video
}

// Load fetches both record sets. A failed or misconfigured feed degrades
// that record type to an empty set with an operator-visible warning; it is
// never an error for the session. An empty URL means the feed is not
// configured.
func Load(ctx context.Context, feed *Feed, faqURL, videoURL string, logger log.Logger) *Catalog {
	if logger == nil {
		logger = log.NewNop()
	}

	c := &Catalog{}

	if faqURL == "" {
		logger.Warn("FAQ feed URL not configured; FAQ answers unavailable")
	} else {
		faqs, err := feed.FAQs(ctx, faqURL)
		if err != nil {
			logger.Warn("loading FAQ feed failed; continuing without FAQs", "error", err)
		} else {
			c.faqs = faqs
		}
	}

	if videoURL == "" {
		logger.Warn("video feed URL not configured; video suggestions unavailable")
	} else {
		videos, err := feed.Videos(ctx, videoURL)
		if err != nil {
			logger.Warn("loading video feed failed; continuing without videos", "error", err)
		} else {
			c.videos = videos
		}
	}

	return c
}

// NewCatalog builds a Catalog directly from record slices. Used by tests
// and by callers that source records elsewhere.
func NewCatalog(faqs []FAQ, videos []Video) *Catalog {
	return &Catalog{faqs: faqs, videos: videos}
}

// FAQs returns the loaded FAQ records in feed order.
func (c *Catalog) FAQs() []FAQ { return c.faqs }

// Videos returns the loaded video records in feed order.
func (c *Catalog) Videos() []Video { return c.videos }

// Stats summarizes the loaded record sets.
type Stats struct {
	FAQCount   int `json:"faq_count"`
	VideoCount int `json:"video_count"`
}

// Stats returns record counts for observability surfaces.
func (c *Catalog) Stats() Stats {
	return Stats{FAQCount: len(c.faqs), VideoCount: len(c.videos)}
}
