package docsearch

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// MarkdownTitle returns the text of the first level-one "# heading" line of
// md, or "" when there is none.
func MarkdownTitle(md string) string {
	m := headingRe.FindStringSubmatch(md)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
