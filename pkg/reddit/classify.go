package reddit

import (
	"html"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
)

const (
	textExcerptRunes = 600
	postHintImage    = "image"
	postHintVideo    = "hosted:video"
)

// Classify decides the content variant of an item. Rules are evaluated in
// order and the first match wins: self text, gallery, image, hosted video,
// and finally a plain link.
func Classify(it Item) domain.Content {
	switch {
	case it.IsSelf:
		body := StripMarkdown(truncateRunes(it.Selftext, textExcerptRunes))
		return domain.Text{Body: html.EscapeString(body)}
	case it.IsGallery:
		return domain.Gallery{URL: firstGalleryImage(it.MediaMetadata)}
	case it.PostHint == postHintImage:
		if u := it.previewImage(); u != "" {
			return domain.Image{URL: u}
		}
		return domain.Image{URL: it.URL}
	case it.IsVideo || it.PostHint == postHintVideo:
		return domain.Video{URL: it.videoFallback()}
	default:
		return domain.Link{URL: it.URL}
	}
}

// toPost builds the immutable Post for an accepted item.
func toPost(it Item, siteURL string) domain.Post {
	return domain.Post{
		Title:   html.EscapeString(it.Title),
		Link:    permalinkURL(siteURL, it.Permalink),
		Score:   it.Score,
		Content: Classify(it),
	}
}

func permalinkURL(siteURL, permalink string) string {
	permalink = strings.TrimSpace(permalink)
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return strings.TrimRight(siteURL, "/") + permalink
}

// SelectPosts applies the score threshold and post limit to items in API
// order. Items below minScore are skipped and do not count toward limit.
func SelectPosts(items []Item, minScore, limit int, siteURL string) []domain.Post {
	posts := make([]domain.Post, 0, min(limit, len(items)))
	for _, it := range items {
		if len(posts) >= limit {
			break
		}
		if it.Score < minScore {
			continue
		}
		posts = append(posts, toPost(it, siteURL))
	}
	return posts
}
