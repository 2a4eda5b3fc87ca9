package reddit

import (
	"bytes"
	"encoding/json"
	"html"
)

// Listing mirrors the subset of the top.json response the digest needs.
type Listing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data Item   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Items returns the listing items in API order.
func (l Listing) Items() []Item {
	out := make([]Item, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		out = append(out, child.Data)
	}
	return out
}

// Item is a single ranked post record.
type Item struct {
	Title         string          `json:"title"`
	Permalink     string          `json:"permalink"`
	URL           string          `json:"url"`
	Score         int             `json:"score"`
	IsSelf        bool            `json:"is_self"`
	Selftext      string          `json:"selftext"`
	IsGallery     bool            `json:"is_gallery"`
	IsVideo       bool            `json:"is_video"`
	PostHint      string          `json:"post_hint"`
	MediaMetadata json.RawMessage `json:"media_metadata"`
	Media         *Media          `json:"media"`
	SecureMedia   *Media          `json:"secure_media"`
	Preview       *Preview        `json:"preview"`
}

// Media holds hosted media descriptors.
type Media struct {
	RedditVideo *struct {
		FallbackURL string `json:"fallback_url"`
	} `json:"reddit_video"`
}

// Preview holds the generated preview images of a post.
type Preview struct {
	Images []struct {
		Source struct {
			URL string `json:"url"`
		} `json:"source"`
	} `json:"images"`
}

type mediaEntry struct {
	Status string `json:"status"`
	S      struct {
		U   string `json:"u"`
		GIF string `json:"gif"`
	} `json:"s"`
}

func (m mediaEntry) url() string {
	if m.S.U != "" {
		return m.S.U
	}
	return m.S.GIF
}

// firstGalleryImage walks media_metadata in document order and returns the
// first usable image URL, HTML-unescaped. Returns "" when none is found.
func firstGalleryImage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return ""
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return ""
		}
		var entry mediaEntry
		if err := dec.Decode(&entry); err != nil {
			return ""
		}
		if u := entry.url(); u != "" {
			return html.UnescapeString(u)
		}
	}
	return ""
}

func (it Item) previewImage() string {
	if it.Preview == nil {
		return ""
	}
	for _, img := range it.Preview.Images {
		if img.Source.URL != "" {
			return html.UnescapeString(img.Source.URL)
		}
	}
	return ""
}

func (it Item) videoFallback() string {
	for _, m := range []*Media{it.Media, it.SecureMedia} {
		if m != nil && m.RedditVideo != nil && m.RedditVideo.FallbackURL != "" {
			return m.RedditVideo.FallbackURL
		}
	}
	return ""
}
