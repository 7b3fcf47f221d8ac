package tokenizer

import (
	"math"
	"unicode/utf8"
)

var negInf = math.Inf(-1)

// Edge is one lattice arc: the piece covering runes [Start, End).
// Unknown edges span a single character no piece covers.
type Edge struct {
	Start   int
	End     int
	ID      int32
	Score   float64
	Unknown bool
}

// Lattice is the per-input segmentation workspace. It is reused across
// calls to avoid reallocating its tables, so a Lattice must not be shared
// between goroutines; see the pool package for handing them out.
type Lattice struct {
	vocab   *Vocabulary
	runes   []rune
	offsets []int // byte offset of each rune; offsets[n] == len(text)
	edges   []Edge
	first   []int // edges starting at i are edges[first[i]:first[i+1]]
	best    []float64
	back    []int
	alpha   []float64
	beta    []float64
}

// NewLattice returns an empty workspace.
func NewLattice() *Lattice {
	return &Lattice{}
}

// Reset builds the lattice of text (already in piece space) over v. Pieces
// with id exclude are left out, which yields the alternative segmentation
// used when scoring a piece for removal; pass -1 to keep every piece.
func (l *Lattice) Reset(v *Vocabulary, text string, exclude int32) {
	l.vocab = v
	l.runes = l.runes[:0]
	l.offsets = l.offsets[:0]
	for i, r := range text {
		l.runes = append(l.runes, r)
		l.offsets = append(l.offsets, i)
	}
	l.offsets = append(l.offsets, len(text))

	n := len(l.runes)
	l.edges = l.edges[:0]
	l.first = l.first[:0]

	for i := 0; i < n; i++ {
		l.first = append(l.first, len(l.edges))
		hasSingle := false

		node := v.trie
		for j := i; j < n; j++ {
			child, ok := node.children[l.runes[j]]
			if !ok {
				break
			}
			node = child
			if node.id < 0 || node.id == exclude {
				continue
			}
			if j == i {
				hasSingle = true
			}
			l.edges = append(l.edges, Edge{
				Start: i,
				End:   j + 1,
				ID:    node.id,
				Score: v.Score(node.id),
			})
		}

		if !hasSingle {
			l.edges = append(l.edges, Edge{
				Start:   i,
				End:     i + 1,
				ID:      v.controls.Unk,
				Score:   v.unkScore,
				Unknown: true,
			})
		}
	}
	l.first = append(l.first, len(l.edges))
}

// Len returns the number of code points in the lattice.
func (l *Lattice) Len() int { return len(l.runes) }

// Edges returns every arc, ordered by start position. The slice is owned by
// the lattice and valid until the next Reset.
func (l *Lattice) Edges() []Edge { return l.edges }

// Viterbi returns the maximum-likelihood path and its log probability.
// Among equal-scoring alternatives the arc with the smallest start wins,
// because arcs are relaxed in start order and only a strictly better score
// replaces an earlier one.
func (l *Lattice) Viterbi() ([]Edge, float64) {
	n := len(l.runes)
	if n == 0 {
		return nil, 0
	}

	l.best = resizeFloats(l.best, n+1)
	l.back = resizeInts(l.back, n+1)
	for i := range l.best {
		l.best[i] = negInf
		l.back[i] = -1
	}
	l.best[0] = 0

	for k, e := range l.edges {
		if math.IsInf(l.best[e.Start], -1) {
			continue
		}
		candidate := l.best[e.Start] + e.Score
		if candidate > l.best[e.End] {
			l.best[e.End] = candidate
			l.back[e.End] = k
		}
	}

	var path []Edge
	for pos := n; pos > 0; {
		e := l.edges[l.back[pos]]
		path = append(path, e)
		pos = e.Start
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, l.best[n]
}

// ForwardBackward adds freq times the posterior expected count of every
// piece to counts (indexed by piece id) and returns the log marginal
// likelihood of the text. Unknown arcs are not counted.
func (l *Lattice) ForwardBackward(freq float64, counts []float64) float64 {
	n := len(l.runes)
	if n == 0 {
		return 0
	}

	l.alpha = resizeFloats(l.alpha, n+1)
	l.beta = resizeFloats(l.beta, n+1)
	for i := range l.alpha {
		l.alpha[i] = negInf
		l.beta[i] = negInf
	}
	l.alpha[0] = 0
	l.beta[n] = 0

	for _, e := range l.edges {
		l.alpha[e.End] = logAddExp(l.alpha[e.End], l.alpha[e.Start]+e.Score)
	}
	for i := n - 1; i >= 0; i-- {
		for _, e := range l.edges[l.first[i]:l.first[i+1]] {
			l.beta[i] = logAddExp(l.beta[i], e.Score+l.beta[e.End])
		}
	}

	z := l.alpha[n]
	for _, e := range l.edges {
		if e.Unknown {
			continue
		}
		posterior := math.Exp(l.alpha[e.Start] + e.Score + l.beta[e.End] - z)
		counts[e.ID] += freq * posterior
	}

	return z
}

// Tokens converts a path into output tokens. Consecutive unknown characters
// collapse into one unknown token, or expand into byte pieces when the
// vocabulary has byte fallback.
func (l *Lattice) Tokens(path []Edge) []Token {
	tokens := make([]Token, 0, len(path))
	text := func(start, end int) string {
		return string(l.runes[start:end])
	}

	for _, e := range path {
		start, end := l.offsets[e.Start], l.offsets[e.End]
		if !e.Unknown {
			tokens = append(tokens, Token{ID: e.ID, Text: text(e.Start, e.End), Start: start, End: end})
			continue
		}

		if l.vocab.byteFallback {
			var buf [utf8.UTFMax]byte
			size := utf8.EncodeRune(buf[:], l.runes[e.Start])
			for _, b := range buf[:size] {
				tokens = append(tokens, Token{ID: l.vocab.byteIDs[b], Text: BytePiece(b), Start: start, End: end})
			}
			continue
		}

		if k := len(tokens) - 1; k >= 0 && tokens[k].unknown {
			tokens[k].End = end
			tokens[k].Text = string(l.runes[runeIndex(l.offsets, tokens[k].Start):e.End])
			continue
		}
		tokens = append(tokens, Token{ID: e.ID, Text: text(e.Start, e.End), Start: start, End: end, unknown: true})
	}

	return tokens
}

// runeIndex maps a byte offset back to its rune position.
func runeIndex(offsets []int, byteOffset int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if offsets[mid] < byteOffset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Segment returns the best segmentation of text (already in piece space) as
// piece ids with its total log probability.
func (v *Vocabulary) Segment(text string) ([]int32, float64) {
	l := NewLattice()
	l.Reset(v, text, -1)
	path, score := l.Viterbi()
	tokens := l.Tokens(path)

	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids, score
}

func logAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

func resizeFloats(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

func resizeInts(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
