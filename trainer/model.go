package trainer

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

type modelPiece struct {
	text     string
	score    float64
	required bool
}

// unigramModel is the mutable piece table owned by one training run.
// Piece i has id numControls+i in every snapshot taken by vocabulary;
// ids change whenever pieces are removed.
type unigramModel struct {
	pieces   []modelPiece
	reserved int
}

func newUnigramModel(reserved int) *unigramModel {
	return &unigramModel{reserved: reserved}
}

// initialize seeds the model with the required characters followed by the
// candidates, scored by their share of the combined frequency.
func (m *unigramModel) initialize(coverage *Coverage, seeds *CandidateSet) {
	required := coverage.Required()
	m.pieces = make([]modelPiece, 0, len(required)+seeds.Len())

	var total float64
	for _, c := range required {
		total += float64(c.Freq)
	}
	for _, c := range seeds.candidates {
		total += float64(c.Freq)
	}
	logTotal := math.Log(total)

	for _, c := range required {
		m.pieces = append(m.pieces, modelPiece{
			text:     string(c.Char),
			score:    math.Log(float64(c.Freq)) - logTotal,
			required: true,
		})
	}
	for _, c := range seeds.candidates {
		m.pieces = append(m.pieces, modelPiece{
			text:  c.Piece,
			score: math.Log(float64(c.Freq)) - logTotal,
		})
	}
}

// size returns the final vocabulary size the model currently implies.
func (m *unigramModel) size() int { return m.reserved + len(m.pieces) }

func (m *unigramModel) score(piece string) (float64, bool) {
	for _, p := range m.pieces {
		if p.text == piece {
			return p.score, true
		}
	}
	return 0, false
}

// vocabulary snapshots the model into an immutable segmentation table.
func (m *unigramModel) vocabulary() (*tokenizer.Vocabulary, error) {
	pieces := controlPieces()
	for _, p := range m.pieces {
		pieces = append(pieces, tokenizer.Piece{Piece: p.text, Score: float32(p.score), Type: tokenizer.PieceNormal})
	}
	return tokenizer.NewVocabulary(pieces, tokenizer.DefaultControlIDs(), false)
}

// reestimate is the M-step: logp = log(c' / sum c') with
// c' = max(c + smoothing, minCount), counts indexed by snapshot id.
func (m *unigramModel) reestimate(counts []float64, smoothing float64) {
	adjusted := make([]float64, len(m.pieces))
	var sum float64
	for i := range m.pieces {
		c := counts[numControls+i] + smoothing
		if c < minCount {
			c = minCount
		}
		adjusted[i] = c
		sum += c
	}

	logSum := math.Log(sum)
	for i := range m.pieces {
		m.pieces[i].score = math.Log(adjusted[i]) - logSum
	}
}

type pruneCandidate struct {
	index int
	loss  float64
}

// pruneToSize removes up to maxRemove non-required pieces, never going
// below target, choosing those whose removal costs the least corpus
// log-likelihood. freq holds Viterbi piece frequencies indexed by id in
// vocab, which must be the current snapshot.
//
// The loss of piece i with frequency f_i and alternative segmentation A is
// f_i * (log p_i - sum over a in A of log p'_a), where p' re-estimates the
// alternative pieces after they absorb the f_i occurrences.
func (m *unigramModel) pruneToSize(vocab *tokenizer.Vocabulary, freq []float64, target, maxRemove int) []string {
	excess := m.size() - target
	if excess <= 0 || maxRemove <= 0 {
		return nil
	}

	var sum float64
	for i := range m.pieces {
		sum += freq[numControls+i]
	}

	lat := tokenizer.NewLattice()
	candidates := make([]pruneCandidate, 0, len(m.pieces))
	for i, p := range m.pieces {
		if p.required {
			continue
		}

		id := int32(numControls + i)
		f := freq[id]
		loss := 0.0
		if f > 0 {
			lat.Reset(vocab, p.text, id)
			alt, _ := lat.Viterbi()

			logF := math.Log(sum + f*float64(len(alt)-1))
			logAlt := 0.0
			for _, e := range alt {
				logAlt += math.Log(freq[e.ID]+f) - logF
			}
			loss = f * (math.Log(f) - math.Log(sum) - logAlt)
		}
		candidates = append(candidates, pruneCandidate{index: i, loss: loss})
	}

	slices.SortFunc(candidates, func(a, b pruneCandidate) int {
		if c := cmp.Compare(a.loss, b.loss); c != 0 {
			return c
		}
		pa, pb := m.pieces[a.index], m.pieces[b.index]
		if c := cmp.Compare(pa.score, pb.score); c != 0 {
			return c
		}
		return strings.Compare(pa.text, pb.text)
	})

	k := min(maxRemove, excess, len(candidates))
	drop := make(map[int]bool, k)
	removed := make([]string, 0, k)
	for _, c := range candidates[:k] {
		drop[c.index] = true
		removed = append(removed, m.pieces[c.index].text)
	}

	kept := m.pieces[:0]
	for i, p := range m.pieces {
		if !drop[i] {
			kept = append(kept, p)
		}
	}
	m.pieces = kept

	return removed
}

// scoredPiece is a finished NORMAL piece before id assignment.
type scoredPiece struct {
	text  string
	score float64
}

func (m *unigramModel) finalPieces() []scoredPiece {
	out := make([]scoredPiece, len(m.pieces))
	for i, p := range m.pieces {
		out[i] = scoredPiece{text: p.text, score: p.score}
	}
	return out
}

func controlPieces() []tokenizer.Piece {
	return []tokenizer.Piece{
		{Piece: tokenizer.PadPiece, Type: tokenizer.PieceControl},
		{Piece: tokenizer.UnkPiece, Type: tokenizer.PieceUnknown},
		{Piece: tokenizer.BOSPiece, Type: tokenizer.PieceControl},
		{Piece: tokenizer.EOSPiece, Type: tokenizer.PieceControl},
	}
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
