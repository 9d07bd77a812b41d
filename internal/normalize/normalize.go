// Package normalize canonicalizes directory cell text for token comparison.
//
// Source spreadsheets mix upper/lower case, accented characters, stray
// punctuation and uneven whitespace. All matching (header detection, row
// extraction, search) happens on the canonical form produced here, so the
// exact pipeline order matters: lowercase first, strip diacritics, collapse
// separators, drop leftover symbols, trim.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining diacritical marks and
// recomposes, turning "José" into "Jose" without touching base letters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	// Commas, hyphens and runs of whitespace all act as token separators
	// in the source data ("Perez,Juan", "SUB-GERENCIA").
	separatorPattern = regexp.MustCompile(`[,\s-]+`)

	// Anything left that is not a word character or a space is noise
	// (parentheses, slashes, degree signs).
	symbolPattern = regexp.MustCompile(`[^\w ]`)
)

// Normalize returns the canonical form of s: lowercase, accent-free,
// separator-collapsed, symbol-free, trimmed. Empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		// Malformed UTF-8 in a cell; match on the lowered text as-is.
		stripped = lowered
	}

	collapsed := separatorPattern.ReplaceAllString(stripped, " ")
	cleaned := symbolPattern.ReplaceAllString(collapsed, "")
	return strings.TrimSpace(cleaned)
}

// memoCapacity bounds the per-parse memo. Header tokens and department
// names repeat across hundreds of rows, so a small cache covers nearly
// every lookup in practice.
const memoCapacity = 1000

// Memo wraps Normalize with a bounded FIFO cache keyed by the raw input.
// It is meant for a single parse pass on one goroutine and does no
// locking; query-time callers should use Normalize directly.
type Memo struct {
	cache map[string]string
	order []string
}

// NewMemo returns an empty memoizing normalizer.
func NewMemo() *Memo {
	return &Memo{cache: make(map[string]string, memoCapacity)}
}

// Normalize returns the canonical form of s, caching the result. When the
// cache is full the oldest entry is evicted first.
func (m *Memo) Normalize(s string) string {
	if v, ok := m.cache[s]; ok {
		return v
	}

	v := Normalize(s)
	if len(m.order) >= memoCapacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.cache, oldest)
	}
	m.cache[s] = v
	m.order = append(m.order, s)
	return v
}

// Len reports how many entries the memo currently holds.
func (m *Memo) Len() int {
	return len(m.cache)
}
