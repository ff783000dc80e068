// Package sanitizer cleans untrusted form input with bluemonday policies.
package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	formatting *bluemonday.Policy
	once       sync.Once
)

func policies() {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()

		formatting = bluemonday.NewPolicy()
		formatting.AllowStandardURLs()
		formatting.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li")
		formatting.AllowAttrs("href").OnElements("a")
		formatting.RequireNoFollowOnLinks(true)
	})
}

// Text strips all markup from multi-line input. Horizontal whitespace is
// collapsed per line, and runs of blank lines shrink to one.
// bluemonday escapes the remaining text; the escaping is undone because the
// result is stored raw and escaped again on render.
func Text(s string) string {
	lines := strings.Split(strings.ReplaceAll(strip(s), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, l)
	}
	return strings.TrimSuffix(strings.Join(out, "\n"), "\n")
}

// Line strips all markup and folds the input onto a single line.
func Line(s string) string {
	return strings.Join(strings.Fields(strip(s)), " ")
}

func strip(s string) string {
	policies()
	return unescape.Replace(strict.Sanitize(s))
}

// HTML keeps basic inline formatting and drops everything else.
func HTML(s string) string {
	policies()
	return formatting.Sanitize(s)
}

var unescape = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'")
