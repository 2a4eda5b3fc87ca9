package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/dustin/go-humanize"
)

const (
	DefaultSiteURL = "https://www.reddit.com"

	highTierMin = 2000
	midTierMin  = 500

	generatedLayout = "2006-01-02 15:04"
)

// Tier names the score badge band: high for >= 2000, mid for 500..1999,
// low below 500.
func Tier(score int) string {
	switch {
	case score >= highTierMin:
		return "high"
	case score >= midTierMin:
		return "mid"
	default:
		return "low"
	}
}

// Renderer turns a Digest into a self-contained HTML document.
type Renderer struct {
	siteURL string
	tmpl    *template.Template
}

// New builds a Renderer whose section headings link to communities on siteURL.
func New(siteURL string) (*Renderer, error) {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	tmpl, err := template.New("digest").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{siteURL: siteURL, tmpl: tmpl}, nil
}

// Render produces the document for d. It performs no I/O.
func (r *Renderer) Render(d domain.Digest, periodLabel string, generatedAt time.Time) ([]byte, error) {
	page := r.buildPage(d, periodLabel, generatedAt)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("execute digest template: %w", err)
	}
	return buf.Bytes(), nil
}

type pageView struct {
	Period     string
	Generated  string
	Nav        []sectionView
	Weekly     []sectionView
	Monthly    []sectionView
	HasMonthly bool
}

type sectionView struct {
	Anchor       string
	Community    string
	CommunityURL string
	Cards        []cardView
}

type cardView struct {
	Type      string
	Tier      string
	ScoreText string
	// Title and Body arrive HTML-escaped from the fetcher.
	Title    template.HTML
	Body     template.HTML
	Link     string
	MediaURL string
	Domain   string
}

func (r *Renderer) buildPage(d domain.Digest, periodLabel string, generatedAt time.Time) pageView {
	page := pageView{
		Period:     periodLabel,
		Generated:  generatedAt.Format(generatedLayout),
		HasMonthly: d.HasMonthly,
	}
	page.Weekly = r.sections("weekly", d.Weekly)
	page.Nav = append(page.Nav, page.Weekly...)
	if d.HasMonthly {
		page.Monthly = r.sections("monthly", d.Monthly)
		page.Nav = append(page.Nav, page.Monthly...)
	}
	return page
}

func (r *Renderer) sections(group string, in []domain.Section) []sectionView {
	out := make([]sectionView, 0, len(in))
	for _, s := range in {
		sv := sectionView{
			Anchor:       group + "-" + s.Community,
			Community:    s.Community,
			CommunityURL: r.siteURL + "/r/" + url.PathEscape(s.Community) + "/",
		}
		for _, p := range s.Posts {
			sv.Cards = append(sv.Cards, card(p))
		}
		out = append(out, sv)
	}
	return out
}

func card(p domain.Post) cardView {
	cv := cardView{
		Type:      string(p.Type()),
		Tier:      Tier(p.Score),
		ScoreText: humanize.Comma(int64(p.Score)),
		Title:     template.HTML(p.Title),
		Link:      p.Link,
	}
	switch c := p.Content.(type) {
	case domain.Text:
		cv.Body = template.HTML(c.Body)
	case domain.Image:
		cv.MediaURL = c.URL
	case domain.Gallery:
		cv.MediaURL = c.URL
	case domain.Video:
		cv.MediaURL = c.URL
	case domain.Link:
		cv.MediaURL = c.URL
		cv.Domain = Domain(c.URL)
	}
	return cv
}

// Domain returns the host of rawURL without a leading "www.", or rawURL
// itself when no host can be extracted.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
