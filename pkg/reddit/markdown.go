package reddit

import (
	"regexp"
	"strings"
)

var (
	mdLinkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdHeadingRe  = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	mdBlankRunRe = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)

	// Paired inline markers. Content must start and end with a non-space and
	// stay on one line; underscores only count at word boundaries.
	mdCodeRe        = regexp.MustCompile("`([^`\n]+)`")
	mdStrongRe      = regexp.MustCompile(`\*\*(\S(?:[^\n]*?\S)?)\*\*`)
	mdStrikeRe      = regexp.MustCompile(`~~(\S(?:[^\n]*?\S)?)~~`)
	mdEmRe          = regexp.MustCompile(`\*(\S(?:[^\n]*?\S)?)\*`)
	mdUnderStrongRe = regexp.MustCompile(`(^|[^\pL\pN_])__(\S(?:[^\n]*?\S)?)__([^\pL\pN_]|$)`)
	mdUnderEmRe     = regexp.MustCompile(`(^|[^\pL\pN_])_(\S(?:[^\n]*?\S)?)_([^\pL\pN_]|$)`)
)

// StripMarkdown converts the light markdown used in self posts to plain text.
// It is applied until the text stops changing, so StripMarkdown(StripMarkdown(s))
// equals StripMarkdown(s).
func StripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdCodeRe.ReplaceAllString(s, "$1")
	s = mdStrongRe.ReplaceAllString(s, "$1")
	s = mdStrikeRe.ReplaceAllString(s, "$1")
	s = mdEmRe.ReplaceAllString(s, "$1")
	s = mdUnderStrongRe.ReplaceAllString(s, "$1$2$3")
	s = mdUnderEmRe.ReplaceAllString(s, "$1$2$3")
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdBlankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
