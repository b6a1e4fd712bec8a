// Package trends analyzes logged queries for recurring topics.
//
// This is the only layer that removes stop words. The matching engine
// deliberately keeps them so short legitimate keywords ("gst") are never
// lost; trend counting, by contrast, is useless without filtering.
package trends

import (
	"sort"

	"github.com/udyogmitra/mitra/internal/match"
)

// KeywordCount is one trending keyword with its occurrence count across
// queries.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Analyze tokenizes the queries, drops stop words, and returns the topN
// keywords by frequency. Each query contributes a token at most once, so
// repetition inside a single query does not inflate a trend. Ties break
// alphabetically for deterministic output.
func Analyze(queries []string, topN int) []KeywordCount {
	if len(queries) == 0 || topN <= 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, q := range queries {
		for tok := range match.Tokenize(q) {
			if stopWords[tok] {
				continue
			}
			counts[tok]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	ranked := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		ranked = append(ranked, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// stopWords are common English words excluded from trend counting, plus
// conversational filler typical of chat queries.
var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "herself": true, "him": true, "himself": true,
	"his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "itself": true,
	"just": true, "me": true, "more": true, "most": true, "my": true,
	"myself": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "our": true, "ours": true,
	"ourselves": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "should": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"theirs": true, "them": true, "themselves": true, "then": true,
	"there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
	"yours": true, "yourself": true, "yourselves": true, "tell": true,
}
