package match

import (
	"regexp"
	"strings"
)

// wordPattern extracts significant word runs: letters, digits and
// underscore, three characters or longer.
var wordPattern = regexp.MustCompile(`\w{3,}`)

// broadWordPattern extracts every word run regardless of length. Used for
// record text, and as the query fallback so short queries like "gst tax"
// still produce tokens.
var broadWordPattern = regexp.MustCompile(`\w+`)

// TokenSet is a deduplicated set of lowercase word tokens. Order and
// frequency are irrelevant to matching; only presence matters.
type TokenSet map[string]struct{}

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int { return len(s) }

// Tokenize normalizes text into a set of significant query tokens.
// Words of three or more characters are extracted first; if that yields
// nothing (a query of only very short words), every word run is taken
// instead. No stemming and no stop-word removal: a short keyword like
// "gst" is a legitimate match target.
func Tokenize(text string) TokenSet {
	tokens := collect(wordPattern, text)
	if len(tokens) == 0 {
		tokens = collect(broadWordPattern, text)
	}
	return tokens
}

// tokenizeBroad extracts every word run. Record-side tokenization always
// uses the broad pattern so short record words remain matchable.
func tokenizeBroad(text string) TokenSet {
	return collect(broadWordPattern, text)
}

func collect(pattern *regexp.Regexp, text string) TokenSet {
	words := pattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
