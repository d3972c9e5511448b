// Package suggest offers completions for a cell from reference sheets: the
// distinct values found under a matching column title, most frequent
// first.
package suggest

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/joeycumines/gridedit/internal/grid"
)

// DefaultLimit is the number of suggestions returned when no limit is
// given.
const DefaultLimit = 20

// fuzzyThreshold is the minimum token similarity for a fuzzy title match.
const fuzzyThreshold = 0.5

// Sheet is a reference table: a title row and data rows.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// SheetFromTSV parses tab-separated text whose first line is the header.
func SheetFromTSV(text string) Sheet {
	values := grid.ParseTSV(text)
	if len(values) == 0 {
		return Sheet{}
	}
	return Sheet{Header: values[0], Rows: values[1:]}
}

// MatchMode says how a title was matched to an indexed key.
type MatchMode string

const (
	MatchNone  MatchMode = "none"
	MatchExact MatchMode = "exact"
	MatchAlias MatchMode = "alias"
	MatchFuzzy MatchMode = "fuzzy"
)

// Match is the result of resolving a title.
type Match struct {
	Key   string
	Mode  MatchMode
	Score float64
}

// Explanation describes how one column title resolves.
type Explanation struct {
	Col    int
	Header string
	Match  string
	Mode   MatchMode
}

type bucket struct {
	values []string
	norms  []string
	// byFirst indexes values by the first byte of their normalized form.
	byFirst map[byte][]int
}

type query struct {
	header, prefix string
	limit          int
}

// Engine indexes reference sheets by normalized column title.
type Engine struct {
	n       *normalizer
	aliases map[string][]string
	index   map[string]*bucket
	keys    []string

	last        *query
	lastResults []string
}

// New returns an empty engine using DefaultAliases.
func New() *Engine {
	return &Engine{
		n:       newNormalizer(),
		aliases: DefaultAliases,
		index:   make(map[string]*bucket),
	}
}

// SetAliases replaces the title alias table. Keys are normalized titles;
// values are alternative titles tried in order.
func (e *Engine) SetAliases(aliases map[string][]string) {
	e.aliases = aliases
	e.last = nil
}

// Normalize exposes the matching normalization.
func (e *Engine) Normalize(s string) string { return e.n.norm(s) }

// Rebuild replaces the index with the values of sheets. Columns with the
// same normalized title across sheets share one bucket.
func (e *Engine) Rebuild(sheets ...Sheet) {
	e.n.reset()
	e.last, e.lastResults = nil, nil
	counts := make(map[string]map[string]int)
	var order []string
	for _, sh := range sheets {
		for c, h := range sh.Header {
			if h == "" {
				continue
			}
			key := e.n.norm(h)
			bc, ok := counts[key]
			if !ok {
				bc = make(map[string]int)
				counts[key] = bc
				order = append(order, key)
			}
			for _, row := range sh.Rows {
				if c >= len(row) {
					continue
				}
				if v := strings.TrimSpace(row[c]); v != "" {
					bc[v]++
				}
			}
		}
	}

	coll := collate.New(language.Und)
	e.index = make(map[string]*bucket, len(counts))
	for key, bc := range counts {
		b := &bucket{byFirst: make(map[byte][]int)}
		for v := range bc {
			b.values = append(b.values, v)
		}
		slices.SortFunc(b.values, func(x, y string) int {
			if c := cmp.Compare(bc[y], bc[x]); c != 0 {
				return c
			}
			return coll.CompareString(x, y)
		})
		b.norms = make([]string, len(b.values))
		for i, v := range b.values {
			nv := e.n.norm(v)
			b.norms[i] = nv
			k := byte('#')
			if nv != "" {
				k = nv[0]
			}
			b.byFirst[k] = append(b.byFirst[k], i)
		}
		e.index[key] = b
	}
	e.keys = order
}

// Keys returns the indexed normalized titles in first-seen order.
func (e *Engine) Keys() []string { return slices.Clone(e.keys) }

// FindKeyDetailed resolves a title to an indexed key: exact match on the
// normalized title, then the alias table, then token similarity.
func (e *Engine) FindKeyDetailed(name string) (Match, bool) {
	q := e.n.norm(name)
	if q == "" {
		return Match{Mode: MatchNone}, false
	}
	if _, ok := e.index[q]; ok {
		return Match{Key: q, Mode: MatchExact, Score: 1}, true
	}
	for _, a := range e.aliases[q] {
		if k := e.n.norm(a); k != "" {
			if _, ok := e.index[k]; ok {
				return Match{Key: k, Mode: MatchAlias, Score: 1}, true
			}
		}
	}

	qTokens := tokenSet(q)
	best, bestScore := "", 0.0
	for _, k := range e.keys {
		score := jaccard(qTokens, tokenSet(k))
		if strings.Contains(k, q) || strings.Contains(q, k) {
			score += 0.15
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if best != "" && bestScore >= fuzzyThreshold {
		return Match{Key: best, Mode: MatchFuzzy, Score: bestScore}, true
	}
	return Match{Mode: MatchNone}, false
}

// FindKey is FindKeyDetailed returning only the key.
func (e *Engine) FindKey(name string) (string, bool) {
	m, ok := e.FindKeyDetailed(name)
	return m.Key, ok
}

// HasHeader reports whether the title resolves to an indexed key.
func (e *Engine) HasHeader(name string) bool {
	_, ok := e.FindKey(name)
	return ok
}

// Suggest returns up to limit values for the column titled header that
// match prefix. Values whose normalized form starts with the normalized
// prefix come first, then values containing it; within each group the
// frequency order holds. An empty prefix returns the most frequent
// values. A limit <= 0 means DefaultLimit.
func (e *Engine) Suggest(header, prefix string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := query{header: header, prefix: prefix, limit: limit}
	if e.last != nil && *e.last == q {
		return slices.Clone(e.lastResults)
	}
	out := e.suggest(header, prefix, limit)
	e.last, e.lastResults = &q, out
	return slices.Clone(out)
}

func (e *Engine) suggest(header, prefix string, limit int) []string {
	key, ok := e.FindKey(header)
	if !ok {
		return nil
	}
	b := e.index[key]
	p := e.n.norm(prefix)
	if p == "" {
		return slices.Clone(b.values[:min(limit, len(b.values))])
	}

	// Indexes sharing the prefix's first byte are scanned before the rest.
	first := b.byFirst[p[0]]
	scan := make([]int, 0, len(b.values))
	scan = append(scan, first...)
	inFirst := make(map[int]bool, len(first))
	for _, i := range first {
		inFirst[i] = true
	}
	for i := range b.values {
		if !inFirst[i] {
			scan = append(scan, i)
		}
	}

	out := make([]string, 0, limit)
	taken := make(map[int]bool)
	for _, i := range scan {
		if len(out) >= limit {
			return out
		}
		if strings.HasPrefix(b.norms[i], p) {
			out = append(out, b.values[i])
			taken[i] = true
		}
	}
	for _, i := range scan {
		if len(out) >= limit {
			break
		}
		if !taken[i] && strings.Contains(b.norms[i], p) {
			out = append(out, b.values[i])
		}
	}
	return out
}

// Explain reports how each title resolves, for diagnostics.
func (e *Engine) Explain(headers []string) []Explanation {
	out := make([]Explanation, len(headers))
	for i, h := range headers {
		out[i] = Explanation{Col: i, Header: h, Mode: MatchNone}
		if h == "" {
			continue
		}
		if m, ok := e.FindKeyDetailed(h); ok {
			out[i].Match, out[i].Mode = m.Key, m.Mode
		}
	}
	return out
}

// CountMatches returns how many titles resolve to an indexed key.
func (e *Engine) CountMatches(headers []string) int {
	n := 0
	for _, h := range headers {
		if e.HasHeader(h) {
			n++
		}
	}
	return n
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
