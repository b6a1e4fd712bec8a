package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udyogmitra/mitra/internal/log"
)

const faqCSV = `Question,Solution,Key Words,Domain
How to register a new business?,File the incorporation forms online.,"Registration, New Business",Registration
What are GST filing deadlines?,Returns are due monthly or quarterly.,"GST, tax, deadlines",Finance
,Missing question so this row is dropped.,orphan,
How do I open a current account?,Visit any bank branch with your registration certificate.," banking , ,ACCOUNT ",
`

const videoCSV = `Domain,Query,Video Description,Video Link,Keywords
Marketing,Social media basics,Reach customers on a budget.,https://videos.example/soc101,"marketing, social"
Finance,GST walkthrough,Filing your first GST return.,https://videos.example/gst1,"gst, tax"
Finance,No link video,This row is dropped.,,"gst"
`

func TestFeedFAQs_BOMPrefixedHeader(t *testing.T) {
	// Sheets exported from spreadsheet tools often lead with a UTF-8
	// byte-order mark; the first header cell must still be recognized.
	srv := csvServer(t, "\uFEFF"+faqCSV)

	faqs, err := newTestFeed().FAQs(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, faqs, 3)
	assert.Equal(t, "How to register a new business?", faqs[0].Question)
}

func csvServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFeed() *Feed {
	return NewFeed(5*time.Second, log.NewNop())
}

func TestFeedFAQs(t *testing.T) {
	srv := csvServer(t, faqCSV)

	faqs, err := newTestFeed().FAQs(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, faqs, 3, "incomplete row must be dropped silently")

	first := faqs[0]
	assert.Equal(t, "How to register a new business?", first.Question)
	assert.Equal(t, "File the incorporation forms online.", first.Solution)
	assert.Equal(t, []string{"registration", "new business"}, first.Keywords)
	assert.Equal(t, "Registration", first.Domain)

	// Keyword cells are trimmed, lowercased and emptied of blanks.
	last := faqs[2]
	assert.Equal(t, []string{"banking", "account"}, last.Keywords)
	// Missing domain defaults.
	assert.Equal(t, DefaultDomain, last.Domain)
}

func TestFeedVideos(t *testing.T) {
	srv := csvServer(t, videoCSV)

	videos, err := newTestFeed().Videos(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, videos, 2, "row without a link must be dropped")

	first := videos[0]
	assert.Equal(t, "Social media basics", first.Title)
	assert.Equal(t, "Reach customers on a budget.", first.Description)
	assert.Equal(t, "https://videos.example/soc101", first.Link)
	assert.Equal(t, []string{"marketing", "social"}, first.Keywords)
	assert.Equal(t, "Marketing", first.Domain)
	assert.True(t, strings.HasPrefix(first.ID, "video-"))
	assert.NotEqual(t, first.ID, videos[1].ID)
}

func TestFeedFAQs_WrongSheet(t *testing.T) {
	srv := csvServer(t, videoCSV)

	_, err := newTestFeed().FAQs(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrWrongSheet)
}

func TestFeedVideos_WrongSheet(t *testing.T) {
	srv := csvServer(t, faqCSV)

	_, err := newTestFeed().Videos(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrWrongSheet)
}

func TestFeedFAQs_MissingColumns(t *testing.T) {
	srv := csvServer(t, "Question,Answer\nWhat?,That.\n")

	_, err := newTestFeed().FAQs(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestFeedFAQs_EmptyBody(t *testing.T) {
	srv := csvServer(t, "")

	faqs, err := newTestFeed().FAQs(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, faqs)
}

func TestFeedFAQs_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestFeed().FAQs(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestLoad_DegradesPerFeed(t *testing.T) {
	good := csvServer(t, videoCSV)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	c := Load(context.Background(), newTestFeed(), bad.URL, good.URL, log.NewNop())

	// FAQ feed failed: empty set, not a crash. Video feed loaded fine.
	assert.Empty(t, c.FAQs())
	assert.Len(t, c.Videos(), 2)
	assert.Equal(t, Stats{FAQCount: 0, VideoCount: 2}, c.Stats())
}

func TestLoad_UnconfiguredURLs(t *testing.T) {
	c := Load(context.Background(), newTestFeed(), "", "", log.NewNop())

	assert.Empty(t, c.FAQs())
	assert.Empty(t, c.Videos())
}
