// Package textmetric provides the token-overlap and vocabulary-diversity
// heuristics used to judge reasoning text. Similarity is pure token math -
// no semantic understanding is attempted.
package textmetric

import (
	"regexp"
	"strings"
	"sync"
)

// defaultCacheSize bounds the token-set cache. Comparisons within one
// analysis pass repeat the same raw strings, so a small FIFO is enough.
const defaultCacheSize = 50

// stopWords is the fixed multilingual stop-word and filler set stripped
// during normalization.
var stopWords = []string{
	// English
	"the", "a", "an", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "into", "through", "during",
	"before", "after", "to", "from", "of", "in", "on", "is", "are", "was",
	"were", "be", "been", "being", "have", "has", "had", "do", "does",
	"did", "will", "would", "should", "could", "may", "might", "must",
	"can", "this", "that", "these", "those", "it", "its", "as", "so",
	// fillers
	"very", "just", "really", "actually", "basically", "simply", "quite",
	"rather", "somewhat", "perhaps", "maybe", "well", "anyway",
	// Spanish
	"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del",
	"en", "que", "es", "por", "con",
	// French
	"le", "les", "des", "une", "et", "ou", "dans", "pour", "sur", "est",
	// German
	"der", "die", "das", "und", "oder", "ist", "ein", "eine", "mit", "von",
}

// technicalTerms are short tokens that qualify despite the length cutoff.
var technicalTerms = map[string]struct{}{
	"api": {}, "db": {}, "url": {}, "ui": {}, "os": {}, "ai": {},
	"id": {}, "io": {}, "cli": {}, "sql": {}, "css": {}, "k8s": {},
}

var (
	stopWordPattern   = regexp.MustCompile(`(?i)\b(?:` + strings.Join(stopWords, "|") + `)\b`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, strips the stop-word/filler set, and collapses
// whitespace.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	stripped := stopWordPattern.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(stripped, " "))
}

// tokenSet splits text into qualifying tokens: longer than two runes, or
// present in the technical-term allow list.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range nonWordPattern.Split(text, -1) {
		if !qualifies(tok) {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

func qualifies(tok string) bool {
	if tok == "" {
		return false
	}
	if len([]rune(tok)) > 2 {
		return true
	}
	_, ok := technicalTerms[tok]
	return ok
}

// Analyzer computes text metrics with a bounded FIFO cache of token sets
// keyed by raw input string. The cache must be cleared on session reset so
// a new session never reuses stale sets.
type Analyzer struct {
	mu       sync.Mutex
	cache    map[string]map[string]struct{}
	order    []string
	capacity int
}

// NewAnalyzer creates an analyzer with the default cache size.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		cache:    make(map[string]map[string]struct{}),
		capacity: defaultCacheSize,
	}
}

// tokens returns the cached token set for raw, computing and caching it on
// miss. Oldest entries are evicted first once the cache is at capacity.
func (a *Analyzer) tokens(raw string) map[string]struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	if set, ok := a.cache[raw]; ok {
		return set
	}

	set := tokenSet(Normalize(raw))

	if len(a.order) >= a.capacity {
		oldest := a.order[0]
		a.order = a.order[1:]
		delete(a.cache, oldest)
	}

	a.cache[raw] = set
	a.order = append(a.order, raw)

	return set
}

// Jaccard returns the token-set similarity of two raw strings in [0,1].
// Returns 0 when either side has no qualifying tokens. Symmetric, and 1
// for identical non-empty qualifying text.
func (a *Analyzer) Jaccard(x, y string) float64 {
	xs := a.tokens(x)
	ys := a.tokens(y)

	if len(xs) == 0 || len(ys) == 0 {
		return 0
	}

	intersection := 0
	for tok := range xs {
		if _, ok := ys[tok]; ok {
			intersection++
		}
	}

	union := len(xs) + len(ys) - intersection
	return float64(intersection) / float64(union)
}

// Entropy is a vocabulary-diversity proxy: distinct qualifying tokens over
// total qualifying tokens of the raw (un-normalized) text, in [0,1].
func (a *Analyzer) Entropy(text string) float64 {
	total := 0
	distinct := make(map[string]struct{})

	for _, tok := range nonWordPattern.Split(strings.ToLower(text), -1) {
		if !qualifies(tok) {
			continue
		}
		total++
		distinct[tok] = struct{}{}
	}

	if total == 0 {
		return 0
	}

	return float64(len(distinct)) / float64(total)
}

// Reset clears the token-set cache. Called on session reset to prevent
// cross-session reuse.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache = make(map[string]map[string]struct{})
	a.order = nil
}

// CacheLen reports the number of cached token sets. Exposed for tests.
func (a *Analyzer) CacheLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.cache)
}
