package suggest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const normCacheLimit = 1000

// normalizer folds text for matching: accents are stripped, anything that
// is not a letter, digit or underscore becomes a space, runs of spaces
// collapse, and the result is trimmed and lower-cased. Results are cached.
type normalizer struct {
	cache map[string]string
	lower cases.Caser
}

func newNormalizer() *normalizer {
	return &normalizer{
		cache: make(map[string]string),
		lower: cases.Lower(language.Und),
	}
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// dStroke has no decomposition, so it is folded by hand.
var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

func (n *normalizer) norm(s string) string {
	if s == "" {
		return ""
	}
	if v, ok := n.cache[s]; ok {
		return v
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks), s)
	if err != nil {
		folded = s
	}
	folded = dStroke.Replace(folded)

	var b strings.Builder
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	out := n.lower.String(strings.TrimRight(b.String(), " "))

	if len(n.cache) >= normCacheLimit {
		clear(n.cache)
	}
	n.cache[s] = out
	return out
}

func (n *normalizer) reset() { clear(n.cache) }
