package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

func listing(items ...string) string {
	return `{"kind":"Listing","data":{"children":[` + strings.Join(items, ",") + `]}}`
}

func linkItem(community string, id, score int) string {
	return fmt.Sprintf(`{"kind":"t3","data":{"title":"post %d","score":%d,"permalink":"/r/%s/comments/%d/p/","url":"https://example.com/%d"}}`,
		id, score, community, id, id)
}

type stubAPI struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (s *stubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path+"?t="+r.URL.Query().Get("t"))
	s.mu.Unlock()

	body, ok := s.bodies[r.URL.Path]
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *stubAPI) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.requests
	s.requests = nil
	return out
}

func testConfig(t *testing.T, apiURL string, weekly, monthly []string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	weeklyPath := filepath.Join(dir, "weekly.txt")
	monthlyPath := filepath.Join(dir, "monthly.txt")
	require.NoError(t, os.WriteFile(weeklyPath, []byte(strings.Join(weekly, "\n")), 0o644))
	require.NoError(t, os.WriteFile(monthlyPath, []byte(strings.Join(monthly, "\n")), 0o644))

	return &config.Config{
		WeeklySourcesFile:  weeklyPath,
		MonthlySourcesFile: monthlyPath,
		OutputDir:          filepath.Join(dir, "out"),
		PostLimit:          20,
		MinScore:           100,
		RequestTimeout:     2 * time.Second,
		APIBaseURL:         apiURL,
		UserAgent:          "digest-test/1.0",
		MarkerStore:        "file",
		MarkerPath:         filepath.Join(dir, "data", "last_monthly.json"),
	}
}

func runDigest(t *testing.T, cfg *config.Config, now time.Time) Result {
	t.Helper()
	d, err := NewDigester(context.Background(), cfg, nil, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestRunEndToEnd(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{
		"/r/a/top.json": listing(linkItem("a", 1, 50), linkItem("a", 2, 600), linkItem("a", 3, 2500)),
		"/r/b/top.json": listing(),
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := testConfig(t, srv.URL, []string{"a", "b"}, nil)
	res := runDigest(t, cfg, fixedNow)

	assert.Equal(t, "2024-W23", res.PeriodTag)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "digest_2024-W23.html"), res.Path)
	assert.False(t, res.MonthlyFetched)

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	require.NoError(t, err)

	cards := doc.Find("#weekly-a article.card")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "600", cards.Eq(0).Find(".badge").Text())
	assert.True(t, cards.Eq(0).Find(".badge").HasClass("badge-mid"))
	assert.Equal(t, "2,500", cards.Eq(1).Find(".badge").Text())
	assert.True(t, cards.Eq(1).Find(".badge").HasClass("badge-high"))

	assert.Equal(t, 0, doc.Find("#weekly-b article.card").Length())
	assert.Equal(t, "No posts found", doc.Find("#weekly-b p.empty").Text())
	assert.Equal(t, 0, doc.Find("h2#monthly").Length())

	_, err = os.Stat(cfg.MarkerPath)
	assert.True(t, errors.Is(err, os.ErrNotExist), "marker must not be written without a monthly fetch")
}

func TestRunMonthlyCadence(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{
		"/r/weekly/top.json":  listing(linkItem("weekly", 1, 150)),
		"/r/monthly/top.json": listing(linkItem("monthly", 2, 900)),
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := testConfig(t, srv.URL, []string{"weekly"}, []string{"monthly"})

	first := runDigest(t, cfg, fixedNow)
	assert.True(t, first.MonthlyFetched)
	require.Len(t, first.Digest.Monthly, 1)
	assert.Equal(t, []string{"/r/weekly/top.json?t=week", "/r/monthly/top.json?t=month"}, api.take())

	marker, err := os.ReadFile(cfg.MarkerPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2024,"month":6}`, string(marker))

	// Same month: weekly only.
	second := runDigest(t, cfg, fixedNow.AddDate(0, 0, 7))
	assert.False(t, second.MonthlyFetched)
	assert.Equal(t, []string{"/r/weekly/top.json?t=week"}, api.take())

	raw, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `id="monthly"`)

	// Next month: monthly again.
	third := runDigest(t, cfg, time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC))
	assert.True(t, third.MonthlyFetched)
	marker, err = os.ReadFile(cfg.MarkerPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2024,"month":7}`, string(marker))
}

func TestRunKeepsMarkerWhenMonthlyGroupFails(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{
		"/r/weekly/top.json": listing(linkItem("weekly", 1, 150)),
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := testConfig(t, srv.URL, []string{"weekly"}, []string{"monthly", "alsomonthly"})

	res := runDigest(t, cfg, fixedNow)
	assert.True(t, res.MonthlyFetched)
	assert.Equal(t, []string{"monthly", "alsomonthly"}, res.Digest.FailedCommunities())

	_, err := os.Stat(cfg.MarkerPath)
	assert.True(t, errors.Is(err, os.ErrNotExist), "marker must not advance when no monthly community was fetched")

	// A later run in the same month retries the monthly group.
	api.take()
	runDigest(t, cfg, fixedNow.AddDate(0, 0, 7))
	assert.Contains(t, api.take(), "/r/monthly/top.json?t=month")
}

func TestRunRecordsMarkerOnPartialMonthlySuccess(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{
		"/r/weekly/top.json": listing(),
		"/r/good/top.json":   listing(linkItem("good", 1, 900)),
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := testConfig(t, srv.URL, []string{"weekly"}, []string{"private", "good"})
	runDigest(t, cfg, fixedNow)

	marker, err := os.ReadFile(cfg.MarkerPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2024,"month":6}`, string(marker))
}

func TestRunContinuesPastFailedCommunity(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{
		"/r/good/top.json": listing(linkItem("good", 1, 300)),
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := testConfig(t, srv.URL, []string{"private", "good"}, nil)
	res := runDigest(t, cfg, fixedNow)

	assert.Equal(t, []string{"private"}, res.Digest.FailedCommunities())
	assert.Equal(t, 1, res.Digest.PostCount())

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "No posts found", doc.Find("#weekly-private p.empty").Text())
	assert.Equal(t, 1, doc.Find("#weekly-good article.card").Length())
}

type blockingFetcher struct{ cancel context.CancelFunc }

func (b blockingFetcher) FetchCommunity(ctx context.Context, _ string, _ domain.Window) ([]domain.Post, error) {
	b.cancel()
	return nil, ctx.Err()
}

func TestRunAbortsOnCancellation(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid", []string{"a", "b"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := NewDigester(ctx, cfg, nil, WithClock(func() time.Time { return fixedNow }), WithFetcher(blockingFetcher{cancel: cancel}))
	require.NoError(t, err)

	_, err = d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "digest_2024-W23.html"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no document should be written after cancellation")
}

func TestRunNotifiesPublishers(t *testing.T) {
	api := &stubAPI{bodies: map[string]string{"/r/a/top.json": listing(linkItem("a", 1, 300))}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	received := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		received <- buf.Bytes()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hook.Close()

	cfg := testConfig(t, srv.URL, []string{"a"}, nil)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "publishers.yaml")
	require.NoError(t, os.WriteFile(cfg.PublishersFile, []byte(fmt.Sprintf(`
publishers:
  - id: hook
    type: http
    http:
      url: %s
`, hook.URL)), 0o644))

	runDigest(t, cfg, fixedNow)

	var got []byte
	select {
	case got = <-received:
	default:
		t.Fatal("webhook was not called")
	}
	assert.Contains(t, string(got), `"period_tag":"2024-W23"`)
	assert.Contains(t, string(got), `"post_count":1`)
}

func TestNewDigesterRejectsNilConfig(t *testing.T) {
	_, err := NewDigester(context.Background(), nil, nil)
	require.Error(t, err)
}
