package reddit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdown(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"link":          {in: "see [the docs](https://go.dev/doc) now", want: "see the docs now"},
		"emphasis":      {in: "**bold** _it_ `code` ~~gone~~", want: "bold it code gone"},
		"headings":      {in: "# One\n### Three\nnot # heading", want: "One\nThree\nnot # heading"},
		"blank runs":    {in: "a\n\n\n\n\nb\n\nc", want: "a\n\nb\n\nc"},
		"blank with ws": {in: "a\n  \n\t\n\nb", want: "a\n\nb"},
		"crlf":          {in: "a\r\n\r\n\r\n\r\nb", want: "a\n\nb"},
		"plain":         {in: "nothing to do", want: "nothing to do"},
		"snake case":    {in: "use snake_case_names", want: "use snake_case_names"},
		"lone asterisk": {in: "2*3 = 6", want: "2*3 = 6"},
		"tilde path":    {in: "cd ~/src", want: "cd ~/src"},
		"strong under":  {in: "a __big__ deal", want: "a big deal"},
		"unpaired":      {in: "** not closed", want: "** not closed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripMarkdown(tc.in))
		})
	}
}

func TestStripMarkdownIsIdempotent(t *testing.T) {
	inputs := []string{
		"[[nested](inner)](outer)",
		"####### seven hashes",
		"# # double heading",
		"***[*x*](y)***\n\n\n\n# z",
		"a\n\n\n \n\n\nb",
		strings.Repeat("_*`~", 50),
		"__*_x_*__ snake_case ~~~~y~~~~",
		"",
	}
	for _, in := range inputs {
		once := StripMarkdown(in)
		assert.Equal(t, once, StripMarkdown(once), "input %q", in)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héé", truncateRunes("hééllo", 3))
	assert.Equal(t, "short", truncateRunes("short", 600))
	assert.Equal(t, "", truncateRunes("abc", 0))
}
