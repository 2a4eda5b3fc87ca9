package reddit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPrecedence(t *testing.T) {
	gallery := json.RawMessage(`{"m1":{"status":"valid","s":{"u":"https://preview.redd.it/one.jpg?width=640&amp;s=abc"}}}`)

	cases := []struct {
		name string
		item Item
		want domain.Content
	}{
		{
			name: "self post wins over gallery flag",
			item: Item{IsSelf: true, IsGallery: true, Selftext: "hello", MediaMetadata: gallery},
			want: domain.Text{Body: "hello"},
		},
		{
			name: "gallery unescapes first image",
			item: Item{IsGallery: true, MediaMetadata: gallery, PostHint: "image"},
			want: domain.Gallery{URL: "https://preview.redd.it/one.jpg?width=640&s=abc"},
		},
		{
			name: "image uses preview",
			item: Item{PostHint: "image", URL: "https://i.redd.it/raw.png", Preview: previewOf("https://preview.redd.it/p.png?a=1&amp;b=2")},
			want: domain.Image{URL: "https://preview.redd.it/p.png?a=1&b=2"},
		},
		{
			name: "image falls back to raw url",
			item: Item{PostHint: "image", URL: "https://i.redd.it/raw.png"},
			want: domain.Image{URL: "https://i.redd.it/raw.png"},
		},
		{
			name: "hosted video fallback",
			item: Item{PostHint: "hosted:video", Media: videoOf("https://v.redd.it/x/DASH_720.mp4")},
			want: domain.Video{URL: "https://v.redd.it/x/DASH_720.mp4"},
		},
		{
			name: "video flag without media degrades to empty url",
			item: Item{IsVideo: true},
			want: domain.Video{URL: ""},
		},
		{
			name: "video from secure media",
			item: Item{IsVideo: true, SecureMedia: videoOf("https://v.redd.it/y/DASH_480.mp4")},
			want: domain.Video{URL: "https://v.redd.it/y/DASH_480.mp4"},
		},
		{
			name: "everything else is a link",
			item: Item{URL: "https://go.dev/blog", PostHint: "link"},
			want: domain.Link{URL: "https://go.dev/blog"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.item))
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	valid := map[domain.ContentType]bool{
		domain.ContentText: true, domain.ContentImage: true, domain.ContentGallery: true,
		domain.ContentVideo: true, domain.ContentLink: true,
	}
	hints := []string{"", "image", "hosted:video", "link", "rich:video", "self"}
	for _, self := range []bool{false, true} {
		for _, gal := range []bool{false, true} {
			for _, vid := range []bool{false, true} {
				for _, hint := range hints {
					c := Classify(Item{IsSelf: self, IsGallery: gal, IsVideo: vid, PostHint: hint})
					require.NotNil(t, c)
					assert.True(t, valid[c.Type()], "unexpected type %q", c.Type())
				}
			}
		}
	}
}

func TestGalleryUsesDocumentOrder(t *testing.T) {
	raw := json.RawMessage(`{
		"zzz": {"status": "failed"},
		"bbb": {"status": "valid", "s": {"u": "https://preview.redd.it/b.jpg"}},
		"aaa": {"status": "valid", "s": {"u": "https://preview.redd.it/a.jpg"}}
	}`)
	for i := 0; i < 20; i++ {
		require.Equal(t, "https://preview.redd.it/b.jpg", firstGalleryImage(raw))
	}
}

func TestGalleryMissingMetadata(t *testing.T) {
	assert.Equal(t, "", firstGalleryImage(nil))
	assert.Equal(t, "", firstGalleryImage(json.RawMessage(`null`)))
	assert.Equal(t, "", firstGalleryImage(json.RawMessage(`{}`)))
	assert.Equal(t, domain.Gallery{URL: ""}, Classify(Item{IsGallery: true}))
}

func TestGalleryAnimatedFallsBackToGIF(t *testing.T) {
	raw := json.RawMessage(`{"g1":{"status":"valid","s":{"gif":"https://i.redd.it/anim.gif"}}}`)
	assert.Equal(t, "https://i.redd.it/anim.gif", firstGalleryImage(raw))
}

func TestTextExcerptIsTruncatedStrippedAndEscaped(t *testing.T) {
	body := "## Title\n**bold** & <tag> [docs](https://go.dev)\n" + strings.Repeat("é", 700)
	c := Classify(Item{IsSelf: true, Selftext: body})

	text, ok := c.(domain.Text)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text.Body, "Title\nbold &amp; &lt;tag&gt; docs\n"), text.Body)
	assert.NotContains(t, text.Body, "<")
	// 600 runes of source minus the markup that was stripped.
	assert.Less(t, strings.Count(text.Body, "é"), 600)
}

func TestSelectPostsAppliesThresholdAndLimit(t *testing.T) {
	items := []Item{
		{Title: "low", Score: 99},
		{Title: "a", Score: 100, Permalink: "/r/go/comments/a/"},
		{Title: "b", Score: 5000},
		{Title: "low2", Score: 3},
		{Title: "c", Score: 250},
		{Title: "d", Score: 101},
	}

	posts := SelectPosts(items, 100, 3, DefaultSiteURL)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{posts[0].Title, posts[1].Title, posts[2].Title})
	assert.Equal(t, "https://www.reddit.com/r/go/comments/a/", posts[0].Link)
}

func TestSelectPostsInvariants(t *testing.T) {
	items := make([]Item, 0, 100)
	for i := 0; i < 100; i++ {
		items = append(items, Item{Title: "t", Score: (i * 37) % 400})
	}
	for _, limit := range []int{1, 5, 20, 100} {
		for _, minScore := range []int{0, 100, 250, 399, 1000} {
			posts := SelectPosts(items, minScore, limit, DefaultSiteURL)
			assert.LessOrEqual(t, len(posts), limit)
			for _, p := range posts {
				assert.GreaterOrEqual(t, p.Score, minScore)
			}
		}
	}
}

func TestTitleIsEscaped(t *testing.T) {
	posts := SelectPosts([]Item{{Title: `Go <1.23> & "generics"`, Score: 500}}, 0, 1, DefaultSiteURL)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go &lt;1.23&gt; &amp; &#34;generics&#34;", posts[0].Title)
}

func previewOf(u string) *Preview {
	var p Preview
	_ = json.Unmarshal([]byte(`{"images":[{"source":{"url":"`+u+`"}}]}`), &p)
	return &p
}

func videoOf(u string) *Media {
	var m Media
	_ = json.Unmarshal([]byte(`{"reddit_video":{"fallback_url":"`+u+`"}}`), &m)
	return &m
}
