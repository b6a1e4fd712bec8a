// Package match implements the lexical relevance engine that decides
// whether curated records answer a user query.
//
// Scoring is deterministic and reproducible: a weighted count of token
// overlaps between the query and a record, with curated keywords weighted
// highest, primary text (question or title) next, and incidental body
// overlap lowest. There is no normalization by text length; longer records
// with more overlapping words are not penalized. That is a deliberate
// simplicity tradeoff, not an oversight.
//
// The engine is generic over record types. Each type declares which of its
// fields participate in matching by returning a Document; the FAQ and
// video adapters in the catalog package combine their fields differently
// and the engine preserves both behaviors rather than unifying them.
package match

import "sort"

// Scoring weights. Keyword matches dominate title matches, which dominate
// plain body-word overlap (2.0 > 1.5 > 1.0).
const (
	// KeywordBonus is added for every curated keyword present verbatim in
	// the query token set.
	KeywordBonus = 2.0

	// PrimaryWeight multiplies the count of query tokens found in the
	// primary text (question or title).
	PrimaryWeight = 1.5
)

// Document is the view of a record the scorer sees. Record types map
// their own fields onto it.
type Document struct {
	// Primary is the question (FAQ) or title (video). Overlap here is
	// weighted by PrimaryWeight on top of the base count.
	Primary string

	// Body is additional text included in base matching without extra
	// weight. Empty for record types that match on primary text and
	// keywords only.
	Body string

	// Keywords are curated tags, already lowercased, trimmed and
	// non-empty. Each one present in the query adds KeywordBonus.
	Keywords []string
}

// Matchable is implemented by records that can be scored against a query.
type Matchable interface {
	MatchDocument() Document
}

// Scored pairs a record with its relevance score for one ranking pass.
// Scores are ephemeral; they are never persisted.
type Scored[T Matchable] struct {
	Record T
	Score  float64
}

// Options configures a ranking pass.
type Options struct {
	// MinScore is the inclusive threshold; records scoring below it are
	// dropped.
	MinScore float64

	// MaxResults truncates the ranked list. Zero or negative means no
	// limit.
	MaxResults int
}

// Score computes the relevance of one document to a query token set.
//
//	base    = |query ∩ words(primary + body + keywords)|
//	keyword = KeywordBonus per curated keyword present in the query
//	primary = PrimaryWeight × |query ∩ words(primary)|
//
// The result is base + keyword + primary, always >= 0.
func Score(query TokenSet, doc Document) float64 {
	if len(query) == 0 {
		return 0
	}

	combined := doc.Primary + " " + doc.Body
	for _, kw := range doc.Keywords {
		combined += " " + kw
	}
	recordWords := tokenizeBroad(combined)

	var score float64
	for tok := range query {
		if recordWords.Has(tok) {
			score++
		}
	}

	for _, kw := range doc.Keywords {
		if query.Has(kw) {
			score += KeywordBonus
		}
	}

	primaryWords := tokenizeBroad(doc.Primary)
	for tok := range query {
		if primaryWords.Has(tok) {
			score += PrimaryWeight
		}
	}

	return score
}

// Rank scores every record against the query, keeps those at or above
// opts.MinScore, sorts them by descending score and truncates to
// opts.MaxResults.
//
// The sort is stable: records with equal scores keep their input order,
// so ranking is deterministic for a fixed record set. Rank is a pure
// function; it never mutates records and holds no state between calls.
// An empty record set, or a query with no tokens even after the broad
// fallback, yields nil.
func Rank[T Matchable](query string, records []T, opts Options) []Scored[T] {
	if len(records) == 0 {
		return nil
	}

	tokens := Tokenize(query)
	if tokens.Len() == 0 {
		return nil
	}

	var ranked []Scored[T]
	for _, rec := range records {
		score := Score(tokens, rec.MatchDocument())
		if score >= opts.MinScore {
			ranked = append(ranked, Scored[T]{Record: rec, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if opts.MaxResults > 0 && len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}
	return ranked
}
