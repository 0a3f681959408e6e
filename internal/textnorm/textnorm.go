// Package textnorm folds raw input lines into the ASCII-safe form used for
// key matching and output. Every input line (key file and data files alike)
// goes through Line before it is split into fields, so keys compare equal
// regardless of accents or stray quoting in the source export.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldings covers letters and punctuation that do not decompose into an
// ASCII base plus combining marks under NFD.
var foldings = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "TH",
	'ı': "i", 'ħ': "h", 'Ħ': "H",
	'\u00A0': " ", // no-break space
	'‘': "'", '’': "'", '‚': "'",
	'“': `"`, '”': `"`, '„': `"`,
	'–': "-", '—': "-",
	'…': "...",
	'\uFEFF': "", // BOM
}

// ASCII transliterates s to ASCII: accents are removed via NFD decomposition,
// known ligatures and typographic punctuation are folded, and every other
// non-ASCII rune (Cyrillic, Greek, CJK, currency signs, ...) is spelled out by
// unidecode, so distinct non-Latin keys stay distinct.
func ASCII(s string) string {
	if isASCII(s) {
		return s
	}

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		default:
			if f, ok := foldings[r]; ok {
				b.WriteString(f)
				continue
			}
			b.WriteString(unidecode.Unidecode(string(r)))
		}
	}
	return b.String()
}

// Line normalizes one raw input line: ASCII transliteration, removal of every
// double-quote character, and trimming of surrounding whitespace (including
// the trailing CR of CRLF files).
func Line(s string) string {
	s = ASCII(s)
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
