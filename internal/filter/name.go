package filter

import "regexp"

// word is an alphabetic token of at least two letters, optionally
// hyphen-joined (Anne-Marie).
const word = `[a-z]{2,}(?:-[a-z]{2,})*`

var (
	// First Last, or First X-Last.
	twoTokenName = regexp.MustCompile(`(?i)^\s*` + word + `\s+(?:` + word + `|[a-z]-[a-z]{2,})\s*$`)
	// First Middle Last, or First M Last.
	threeTokenName = regexp.MustCompile(`(?i)^\s*` + word + `\s+(?:` + word + `|[a-z])\s+` + word + `\s*$`)
)

// IsValidName reports whether s looks like a person's name worth sending to
// the identity API: two or three alphabetic tokens.
func IsValidName(s string) bool {
	return twoTokenName.MatchString(s) || threeTokenName.MatchString(s)
}
