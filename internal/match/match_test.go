package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord is a minimal Matchable for engine tests.
type testRecord struct {
	name string
	doc  Document
}

func (r testRecord) MatchDocument() Document { return r.doc }

func TestTokenize_SignificantWords(t *testing.T) {
	tokens := Tokenize("How do I register a NEW business?")

	assert.True(t, tokens.Has("how"))
	assert.True(t, tokens.Has("register"))
	assert.True(t, tokens.Has("new"))
	assert.True(t, tokens.Has("business"))
	// Below the three-character cut.
	assert.False(t, tokens.Has("do"))
	assert.False(t, tokens.Has("i"))
	assert.False(t, tokens.Has("a"))
}

func TestTokenize_FallbackForShortQueries(t *testing.T) {
	// Every word is under three characters, so the broad pattern engages
	// instead of discarding the query.
	tokens := Tokenize("is it")

	require.Equal(t, 2, tokens.Len())
	assert.True(t, tokens.Has("is"))
	assert.True(t, tokens.Has("it"))
}

func TestTokenize_NoFallbackWhenAnyTokenSurvives(t *testing.T) {
	// "gst" is exactly three characters, so the primary pattern keeps it
	// and the short word "is" stays dropped.
	tokens := Tokenize("is gst")

	require.Equal(t, 1, tokens.Len())
	assert.True(t, tokens.Has("gst"))
	assert.False(t, tokens.Has("is"))
}

func TestTokenize_Deduplicates(t *testing.T) {
	tokens := Tokenize("business business BUSINESS")
	assert.Equal(t, 1, tokens.Len())
}

func TestTokenize_NoTokens(t *testing.T) {
	assert.Equal(t, 0, Tokenize("").Len())
	assert.Equal(t, 0, Tokenize("!!! ... ???").Len())
}

func TestScore_EmptyQuery(t *testing.T) {
	doc := Document{Primary: "GST registration", Keywords: []string{"gst"}}
	assert.Zero(t, Score(nil, doc))
}

func TestScore_KeywordBonusDominates(t *testing.T) {
	query := Tokenize("funding options for startups")

	// Only overlap is one curated keyword: base 1 + bonus 2 + primary 0.
	keywordOnly := Document{Primary: "Raising capital", Body: "", Keywords: []string{"funding"}}
	// Only overlap is one body word: base 1.
	bodyOnly := Document{Primary: "Raising capital", Body: "funding sources explained"}

	kwScore := Score(query, keywordOnly)
	bodyScore := Score(query, bodyOnly)

	assert.Equal(t, 3.0, kwScore)
	assert.Equal(t, 1.0, bodyScore)
	assert.Greater(t, kwScore, bodyScore)
}

func TestScore_PrimaryBeatsBody(t *testing.T) {
	query := Tokenize("marketing ideas")

	// One query word in the title: base 1 + 1.5.
	inTitle := Document{Primary: "Low-cost marketing", Body: "grow your shop"}
	// Same word only in the body: base 1.
	inBody := Document{Primary: "Growing your shop", Body: "low-cost marketing"}

	assert.Equal(t, 2.5, Score(query, inTitle))
	assert.Equal(t, 1.0, Score(query, inBody))
}

func TestScore_RegisterBusinessScenario(t *testing.T) {
	query := Tokenize("How do I register a new business")

	// FAQ-style document: question plus keywords, no body.
	doc := Document{
		Primary:  "How to register a new business?",
		Keywords: []string{"registration", "new business"},
	}

	// Query tokens: how, register, new, business.
	// Base overlap: all four appear in question+keywords text → 4.
	// Keyword bonus: "registration" is not a query token and the phrase
	// "new business" is never a single token → 0.
	// Primary bonus: all four appear in the question → 4 × 1.5 = 6.
	assert.Equal(t, 10.0, Score(query, doc))
}

func rankFixtures() []testRecord {
	return []testRecord{
		{name: "gst-faq", doc: Document{
			Primary:  "How do I file GST returns?",
			Keywords: []string{"gst", "tax", "returns"},
		}},
		{name: "registration-faq", doc: Document{
			Primary:  "How to register a new business?",
			Keywords: []string{"registration", "license"},
		}},
		{name: "marketing-faq", doc: Document{
			Primary:  "Low-cost marketing strategies",
			Keywords: []string{"marketing", "advertising"},
		}},
	}
}

func TestRank_OrderingAndThreshold(t *testing.T) {
	ranked := Rank("how to file gst tax returns", rankFixtures(), Options{MinScore: 1, MaxResults: 3})

	require.NotEmpty(t, ranked)
	assert.Equal(t, "gst-faq", ranked[0].Record.name)

	for i, sr := range ranked {
		assert.GreaterOrEqual(t, sr.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, sr.Score, ranked[i-1].Score, "scores must be non-increasing")
		}
	}
}

func TestRank_TruncatesToMaxResults(t *testing.T) {
	ranked := Rank("how to", rankFixtures(), Options{MinScore: 0, MaxResults: 1})
	assert.LessOrEqual(t, len(ranked), 1)
}

func TestRank_EmptyRecordSet(t *testing.T) {
	ranked := Rank("anything at all", []testRecord(nil), Options{MinScore: 1, MaxResults: 3})
	assert.Nil(t, ranked)
}

func TestRank_QueryWithNoTokens(t *testing.T) {
	ranked := Rank("???", rankFixtures(), Options{MinScore: 0, MaxResults: 3})
	assert.Nil(t, ranked)
}

func TestRank_ShortQueryFallback(t *testing.T) {
	// Every word in "do i" is under three characters, so the query only
	// survives tokenization via the broad fallback; its tokens appear in
	// the gst record's question text, which must still be found.
	ranked := Rank("do i", rankFixtures(), Options{MinScore: 1, MaxResults: 3})

	require.NotEmpty(t, ranked)
	assert.Equal(t, "gst-faq", ranked[0].Record.name)
}

func TestRank_Idempotent(t *testing.T) {
	records := rankFixtures()
	opts := Options{MinScore: 1, MaxResults: 3}

	first := Rank("register a business", records, opts)
	second := Rank("register a business", records, opts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Record.name, second[i].Record.name)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	// Two records with identical documents score identically; input order
	// must be preserved between them.
	records := []testRecord{
		{name: "first", doc: Document{Primary: "GST basics", Keywords: []string{"gst"}}},
		{name: "second", doc: Document{Primary: "GST basics", Keywords: []string{"gst"}}},
	}

	ranked := Rank("gst basics", records, Options{MinScore: 1, MaxResults: 2})

	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "first", ranked[0].Record.name)
	assert.Equal(t, "second", ranked[1].Record.name)
}

func TestRank_DoesNotMutateRecords(t *testing.T) {
	records := rankFixtures()
	before := records[0].doc.Keywords[0]

	Rank("gst", records, Options{MinScore: 0, MaxResults: 10})

	assert.Equal(t, before, records[0].doc.Keywords[0])
}
