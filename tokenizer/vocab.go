package tokenizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unkPenalty is subtracted from the lowest piece score to obtain the score of
// an unknown-character edge, so unknowns are only used when nothing else fits.
const unkPenalty = 10.0

// ControlIDs maps control roles to piece ids; -1 marks an absent piece.
type ControlIDs struct {
	Pad int32
	Unk int32
	BOS int32
	EOS int32
}

// DefaultControlIDs is the layout used by trained models: pad, unk, bos, eos
// in ids 0 through 3.
func DefaultControlIDs() ControlIDs {
	return ControlIDs{Pad: 0, Unk: 1, BOS: 2, EOS: 3}
}

// BytePiece returns the surface used for the byte-fallback piece of b.
func BytePiece(b byte) string {
	return fmt.Sprintf("<0x%02X>", b)
}

func parseBytePiece(s string) (byte, bool) {
	if len(s) != 6 || !strings.HasPrefix(s, "<0x") || s[5] != '>' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[3:5], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

type trieNode struct {
	children map[rune]*trieNode
	id       int32
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode), id: -1}
}

// Vocabulary is an immutable piece table indexed by id and by surface text.
// It is safe for concurrent use.
//
// Invariants:
//   - pieces[id] is the piece with that id; index[pieces[id].Piece] == id.
//   - the trie holds exactly the NORMAL and USER_DEFINED pieces.
//   - when byteFallback is set, byteIDs[b] is the BYTE piece for every b.
type Vocabulary struct {
	pieces       []Piece
	index        map[string]int32
	trie         *trieNode
	controls     ControlIDs
	byteFallback bool
	byteIDs      [256]int32
	byteOf       map[int32]byte
	unkScore     float64
	unkSurface   string
	maxPieceLen  int
}

// NewVocabulary indexes pieces. Piece texts must be unique, the unknown piece
// must exist, and byte fallback requires all 256 BYTE pieces.
func NewVocabulary(pieces []Piece, controls ControlIDs, byteFallback bool) (*Vocabulary, error) {
	v := &Vocabulary{
		pieces:       pieces,
		index:        make(map[string]int32, len(pieces)),
		trie:         newTrieNode(),
		controls:     controls,
		byteFallback: byteFallback,
		byteOf:       make(map[int32]byte),
		unkSurface:   UnknownSurface,
	}
	for i := range v.byteIDs {
		v.byteIDs[i] = -1
	}

	n := int32(len(pieces))
	for _, id := range []int32{controls.Pad, controls.Unk, controls.BOS, controls.EOS} {
		if id >= n {
			return nil, fmt.Errorf("%w: control id %d outside vocabulary of %d pieces", ErrInvalidModel, id, n)
		}
	}
	if controls.Unk < 0 {
		return nil, fmt.Errorf("%w: missing unknown piece", ErrInvalidModel)
	}

	minScore := math.Inf(1)
	for i, p := range pieces {
		id := int32(i)
		if p.Piece == "" {
			return nil, fmt.Errorf("%w: piece %d is empty", ErrInvalidModel, id)
		}
		if _, dup := v.index[p.Piece]; dup {
			return nil, fmt.Errorf("%w: duplicate piece %q", ErrInvalidModel, p.Piece)
		}
		v.index[p.Piece] = id

		switch p.Type {
		case PieceNormal, PieceUserDefined:
			v.insert(p.Piece, id)
			if s := float64(p.Score); s < minScore {
				minScore = s
			}
			if l := utf8.RuneCountInString(p.Piece); l > v.maxPieceLen {
				v.maxPieceLen = l
			}
		case PieceByte:
			b, ok := parseBytePiece(p.Piece)
			if !ok {
				return nil, fmt.Errorf("%w: malformed byte piece %q", ErrInvalidModel, p.Piece)
			}
			v.byteIDs[b] = id
			v.byteOf[id] = b
		}
	}

	if byteFallback {
		for b, id := range v.byteIDs {
			if id < 0 {
				return nil, fmt.Errorf("%w: byte fallback enabled but %s is missing", ErrInvalidModel, BytePiece(byte(b)))
			}
		}
	}

	if math.IsInf(minScore, 1) {
		minScore = 0
	}
	v.unkScore = minScore - unkPenalty

	return v, nil
}

func (v *Vocabulary) insert(piece string, id int32) {
	node := v.trie
	for _, r := range piece {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}
	node.id = id
}

// Size returns the number of pieces, control pieces included.
func (v *Vocabulary) Size() int { return len(v.pieces) }

// Piece returns the piece with the given id.
func (v *Vocabulary) Piece(id int32) (Piece, bool) {
	if id < 0 || int(id) >= len(v.pieces) {
		return Piece{}, false
	}
	return v.pieces[id], true
}

// Lookup returns the id of a piece by its surface text.
func (v *Vocabulary) Lookup(piece string) (int32, bool) {
	id, ok := v.index[piece]
	return id, ok
}

// Score returns the log probability of a piece.
func (v *Vocabulary) Score(id int32) float64 {
	return float64(v.pieces[id].Score)
}

// Controls returns the control piece ids.
func (v *Vocabulary) Controls() ControlIDs { return v.controls }

// ByteFallback reports whether unknown characters are emitted as byte pieces.
func (v *Vocabulary) ByteFallback() bool { return v.byteFallback }

// MaxPieceLength returns the longest segmentable piece, in code points.
func (v *Vocabulary) MaxPieceLength() int { return v.maxPieceLen }

// UnknownScore returns the score assigned to unknown-character edges.
func (v *Vocabulary) UnknownScore() float64 { return v.unkScore }

// Pieces returns a copy of the piece table in id order.
func (v *Vocabulary) Pieces() []Piece {
	out := make([]Piece, len(v.pieces))
	copy(out, v.pieces)
	return out
}
