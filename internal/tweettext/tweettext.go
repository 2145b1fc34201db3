// Package tweettext holds the character rules for a single post.
package tweettext

import (
	"unicode/utf16"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxLength          = 280
	MinGeneratedLength = 20
	Ellipsis           = "..."
)

// Length counts UTF-16 code units of the NFC form, so emoji and other
// astral-plane characters count as 2.
func Length(s string) int {
	return units(norm.NFC.String(s))
}

// Truncate cuts s to at most MaxLength characters, ending in Ellipsis, when
// it is too long. Cuts fall on grapheme cluster boundaries, so surrogate
// pairs and ZWJ sequences stay whole. The bool reports whether anything was
// cut.
func Truncate(s string) (string, bool) {
	s = norm.NFC.String(s)
	if units(s) <= MaxLength {
		return s, false
	}
	budget := MaxLength - units(Ellipsis)
	end, n := 0, 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := units(g.Str())
		if n+w > budget {
			break
		}
		n += w
		_, end = g.Positions()
	}
	return s[:end] + Ellipsis, true
}

func units(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
