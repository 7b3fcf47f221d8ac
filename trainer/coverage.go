package trainer

import (
	"cmp"
	"slices"
	"unicode"
	"unicode/utf8"
)

// CharCount is a code point with its corpus frequency.
type CharCount struct {
	Char rune
	Freq int64
}

// Coverage is the set of characters guaranteed a single-character piece.
type Coverage struct {
	required []CharCount
	covered  map[rune]string // character to Unicode script name
	total    int64
	distinct int
	ratio    float64
}

// ComputeCoverage ranks corpus characters by frequency (ties by code point)
// and admits them while the admitted share of all characters is below
// threshold. A threshold of 1 admits every character.
func ComputeCoverage(corpus *Corpus, threshold float64) *Coverage {
	counts := make(map[rune]int64)
	var total int64
	for _, s := range corpus.Sentences() {
		for _, r := range s.Text {
			counts[r] += s.Freq
			total += s.Freq
		}
	}

	ranked := make([]CharCount, 0, len(counts))
	for r, n := range counts {
		ranked = append(ranked, CharCount{Char: r, Freq: n})
	}
	slices.SortFunc(ranked, func(a, b CharCount) int {
		if c := cmp.Compare(b.Freq, a.Freq); c != 0 {
			return c
		}
		return cmp.Compare(a.Char, b.Char)
	})

	c := &Coverage{
		covered:  make(map[rune]string),
		total:    total,
		distinct: len(ranked),
	}
	var accumulated int64
	for _, cc := range ranked {
		if total > 0 && float64(accumulated)/float64(total) >= threshold {
			break
		}
		accumulated += cc.Freq
		c.required = append(c.required, cc)
		c.covered[cc.Char] = scriptOf(cc.Char)
	}
	if total > 0 {
		c.ratio = float64(accumulated) / float64(total)
	}

	return c
}

// Covers reports whether r is guaranteed a piece.
func (c *Coverage) Covers(r rune) bool {
	_, ok := c.covered[r]
	return ok
}

// CoversString reports whether every character of s is covered.
func (c *Coverage) CoversString(s string) bool {
	for _, r := range s {
		if !c.Covers(r) {
			return false
		}
	}
	return true
}

// Required returns the covered characters by descending frequency.
func (c *Coverage) Required() []CharCount { return c.required }

// Distinct returns the number of distinct characters in the corpus.
func (c *Coverage) Distinct() int { return c.distinct }

// Ratio returns the share of corpus characters that are covered.
func (c *Coverage) Ratio() float64 { return c.ratio }

func (c *Coverage) script(r rune) string { return c.covered[r] }

const (
	scriptInherited = "Inherited"
	scriptUnknown   = "Unknown"
)

func scriptOf(r rune) string {
	if r == utf8.RuneError {
		return scriptUnknown
	}
	for name, table := range unicode.Scripts {
		if unicode.Is(table, r) {
			return name
		}
	}
	return scriptUnknown
}

// joinScript extends a piece whose characters so far share script cur with
// a character of script next. Inherited characters (combining marks, ZWJ)
// join anything; otherwise scripts must match exactly, so Common characters
// such as digits and punctuation only combine with each other.
func joinScript(cur, next string) (string, bool) {
	switch {
	case next == scriptInherited:
		return cur, true
	case cur == "":
		return next, true
	case cur == next:
		return cur, true
	default:
		return "", false
	}
}
