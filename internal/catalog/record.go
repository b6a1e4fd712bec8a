// Package catalog holds the matchable record sets: curated FAQ entries and
// video recommendations, loaded once per session from published-sheet CSV
// feeds and immutable thereafter.
package catalog

import (
	"strings"

	"github.com/udyogmitra/mitra/internal/match"
)

// DefaultDomain is used when a source row carries no domain label.
const DefaultDomain = "General"

// FAQ is a curated question/answer pair.
type FAQ struct {
	Question string
	Solution string
	// Keywords are lowercase, trimmed and non-empty.
	Keywords []string
	Domain   string
}

// MatchDocument exposes the FAQ fields that participate in matching:
// question and keywords only. The solution text is intentionally excluded;
// FAQ matching has always worked on question plus curated tags.
func (f FAQ) MatchDocument() match.Document {
	return match.Document{
		Primary:  f.Question,
		Keywords: f.Keywords,
	}
}

// Video is a curated video recommendation.
type Video struct {
	ID          string
	Domain      string
	Title       string
	Description string
	Link        string
	// Keywords are lowercase, trimmed and non-empty.
	Keywords []string
}

// MatchDocument exposes the video fields that participate in matching:
// title, description and keywords. Unlike FAQs, the descriptive body text
// is included; the two record types combine fields differently.
func (v Video) MatchDocument() match.Document {
	return match.Document{
		Primary:  v.Title,
		Body:     v.Description,
		Keywords: v.Keywords,
	}
}

// splitKeywords normalizes a comma-separated keyword cell: split, trim,
// lowercase, drop empties.
func splitKeywords(cell string) []string {
	parts := strings.Split(cell, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
