package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bulletGlyphs are the list markers normalized to a single canonical bullet.
var bulletGlyphs = map[rune]bool{
	'•': true,
	'‣': true,
	'◦': true,
	'▪': true,
	'●': true,
}

// lineCleaner composes to NFC and strips control and format runes, so line
// text is always safe for downstream serialization (JSON, spreadsheets).
var lineCleaner = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cc)),
	runes.Remove(runes.In(unicode.Cf)),
)

// NormalizeLineText cleans assembled line text: control characters are
// stripped, bullet glyphs become "• ", en/em dashes become "-", and runs of
// whitespace collapse to a single space.
func NormalizeLineText(s string) string {
	cleaned, _, err := transform.String(lineCleaner, s)
	if err != nil {
		// Invalid UTF-8 survives as-is; the whitespace collapse below
		// still applies.
		cleaned = s
	}

	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		switch {
		case bulletGlyphs[r]:
			b.WriteString("• ")
		case r == '–' || r == '—' || r == '‒' || r == '―':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
