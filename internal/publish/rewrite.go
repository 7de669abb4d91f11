package publish

import (
	"fmt"
	"regexp"
)

var headOpenTag = regexp.MustCompile(`(?i)<head[^>]*>`)

// InjectBaseHref inserts a single <base href> element immediately after the
// first opening <head> tag, case-insensitively. Documents without a <head>
// pass through unchanged.
func InjectBaseHref(html []byte, baseURL string) []byte {
	loc := headOpenTag.FindIndex(html)
	if loc == nil {
		return html
	}

	injected := fmt.Sprintf("\n    <base href=%q>", baseURL)
	out := make([]byte, 0, len(html)+len(injected))
	out = append(out, html[:loc[1]]...)
	out = append(out, injected...)
	out = append(out, html[loc[1]:]...)
	return out
}
