package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

const (
	// CandidateLimit is the number of ranked items requested per call.
	CandidateLimit = 100

	DefaultSiteURL   = "https://www.reddit.com"
	DefaultPostLimit = 20
	DefaultMinScore  = 100
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	SiteURL   string
	UserAgent string
	PostLimit int
	MinScore  int
}

// Client fetches and classifies the top posts of a community.
type Client struct {
	http httpclient.Client
	opts Options
}

// NewClient builds a ranking API client. Zero option values fall back to defaults.
func NewClient(client httpclient.Client, opts Options) (*Client, error) {
	if client == nil {
		return nil, errors.New("reddit client requires an http client")
	}
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultSiteURL
	}
	if strings.TrimSpace(opts.SiteURL) == "" {
		opts.SiteURL = DefaultSiteURL
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		return nil, errors.New("reddit client requires a user agent")
	}
	if opts.PostLimit <= 0 {
		opts.PostLimit = DefaultPostLimit
	}
	if opts.MinScore < 0 {
		opts.MinScore = DefaultMinScore
	}
	return &Client{http: client, opts: opts}, nil
}

// FetchError reports a failed fetch for one community.
type FetchError struct {
	Community  string
	Window     domain.Window
	StatusCode int
	Snippet    string
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch r/%s (%s)", e.Community, e.Window)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
		if e.Snippet != "" {
			fmt.Fprintf(&b, " body: %s", e.Snippet)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchCommunity requests the top items of name for window, filters them by
// minimum score and returns at most PostLimit classified posts in API order.
func (c *Client) FetchCommunity(ctx context.Context, name string, window domain.Window) ([]domain.Post, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("community name is empty")
	}
	if _, err := domain.ParseWindow(string(window)); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/r/%s/top.json", c.opts.BaseURL, url.PathEscape(name))
	query := map[string]string{
		"t":     string(window),
		"limit": strconv.Itoa(CandidateLimit),
	}
	headers := map[string]string{
		"User-Agent": c.opts.UserAgent,
		"Accept":     "application/json",
	}

	resp, err := c.http.Get(ctx, endpoint, query, headers)
	if err != nil {
		return nil, &FetchError{Community: name, Window: window, Err: err}
	}
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, &FetchError{
			Community:  name,
			Window:     window,
			StatusCode: code,
			Snippet:    responseSnippet(resp.Body()),
		}
	}

	var listing Listing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, &FetchError{Community: name, Window: window, Err: fmt.Errorf("decode listing: %w", err)}
	}

	return SelectPosts(listing.Items(), c.opts.MinScore, c.opts.PostLimit, c.opts.SiteURL), nil
}

func responseSnippet(body []byte) string {
	const maxRunes = 512
	s := strings.ToValidUTF8(strings.TrimSpace(string(body)), "")
	if cut := truncateRunes(s, maxRunes); cut != s {
		return cut + "..."
	}
	return s
}
