// Package slug derives the URL-safe lookup key used to address albums by title.
package slug

import "strings"

// Make lower-cases title and drops every rune outside a-z and 0-9.
// "Abc Def!" becomes "abcdef".
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
