package domain

// Domain contains core digest models.

import "fmt"

// ContentType identifies how a post is rendered.
type ContentType string

const (
	ContentText    ContentType = "text"
	ContentImage   ContentType = "image"
	ContentGallery ContentType = "gallery"
	ContentVideo   ContentType = "video"
	ContentLink    ContentType = "link"
)

// Content is the classified payload of a post. Exactly one concrete variant
// (Text, Image, Gallery, Video, Link) is attached to every Post.
type Content interface {
	Type() ContentType
	isContent()
}

// Text carries a plain-text, HTML-escaped excerpt of a self post.
type Text struct {
	Body string
}

// Image carries the URL of a single image; URL may be empty.
type Image struct {
	URL string
}

// Gallery carries the URL of the first gallery image; URL may be empty.
type Gallery struct {
	URL string
}

// Video carries the fallback playback URL; URL may be empty.
type Video struct {
	URL string
}

// Link carries the outbound URL of a link post.
type Link struct {
	URL string
}

func (Text) Type() ContentType    { return ContentText }
func (Image) Type() ContentType   { return ContentImage }
func (Gallery) Type() ContentType { return ContentGallery }
func (Video) Type() ContentType   { return ContentVideo }
func (Link) Type() ContentType    { return ContentLink }

func (Text) isContent()    {}
func (Image) isContent()   {}
func (Gallery) isContent() {}
func (Video) isContent()   {}
func (Link) isContent()    {}

// Post is one fetched and classified item. Title is already HTML-escaped.
type Post struct {
	Title   string
	Link    string
	Score   int
	Content Content
}

// Type returns the content type of the attached variant.
func (p Post) Type() ContentType {
	if p.Content == nil {
		return ContentLink
	}
	return p.Content.Type()
}

// Window is the ranking time window requested from the API.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow validates a raw window value.
func ParseWindow(raw string) (Window, error) {
	switch Window(raw) {
	case WindowWeek, WindowMonth:
		return Window(raw), nil
	default:
		return "", fmt.Errorf("unsupported time window %q", raw)
	}
}

// Section holds the posts fetched for one community. Err is set when the
// fetch failed and the section was rendered empty.
type Section struct {
	Community string
	Posts     []Post
	Err       error
}

// Digest is the whole-run artifact. Monthly is only meaningful when
// HasMonthly is true.
type Digest struct {
	Weekly     []Section
	Monthly    []Section
	HasMonthly bool
}

// PostCount returns the number of posts across both groups.
func (d Digest) PostCount() int {
	n := 0
	for _, s := range d.Weekly {
		n += len(s.Posts)
	}
	for _, s := range d.Monthly {
		n += len(s.Posts)
	}
	return n
}

// FailedCommunities lists communities whose fetch failed, weekly first.
func (d Digest) FailedCommunities() []string {
	var out []string
	for _, s := range d.Weekly {
		if s.Err != nil {
			out = append(out, s.Community)
		}
	}
	for _, s := range d.Monthly {
		if s.Err != nil {
			out = append(out, s.Community)
		}
	}
	return out
}

// Marker records the last year/month the monthly group was fetched.
type Marker struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid reports whether the marker holds a plausible date.
func (m Marker) Valid() bool {
	return m.Year > 0 && m.Month >= 1 && m.Month <= 12
}
