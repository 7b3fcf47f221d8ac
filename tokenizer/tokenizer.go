package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tokenizer encodes text into piece ids and decodes them back using a
// unigram language model. It is immutable once built and safe for
// concurrent use.
//
// The zero value is usable only to report ErrModelNotTrained.
type Tokenizer struct {
	model      *Model
	vocab      *Vocabulary
	normalizer Normalizer

	addBOS bool
	addEOS bool
}

// Token is one segment of the escaped input with its piece id.
type Token struct {
	ID    int32
	Text  string
	Start int // byte offset in the escaped text
	End   int // byte offset in the escaped text

	unknown bool
}

// New loads a tokenizer from a SentencePiece .model file.
func New(modelPath string) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return FromModel(model)
}

// FromModel builds a tokenizer over an in-memory model.
func FromModel(model *Model) (*Tokenizer, error) {
	if model == nil || len(model.Pieces) == 0 {
		return nil, ErrModelNotTrained
	}

	controls, err := resolveControls(model)
	if err != nil {
		return nil, err
	}

	vocab, err := NewVocabulary(model.Pieces, controls, model.TrainerSpec.ByteFallback)
	if err != nil {
		return nil, err
	}
	if model.TrainerSpec.UnkSurface != "" {
		vocab.unkSurface = model.TrainerSpec.UnkSurface
	}

	return &Tokenizer{
		model:      model,
		vocab:      vocab,
		normalizer: Normalizer{Scheme: schemeFromName(model.NormalizerSpec.Name)},
	}, nil
}

// resolveControls takes control ids from the trainer spec, falling back to
// the first UNKNOWN piece when the recorded unk id does not point at one.
func resolveControls(model *Model) (ControlIDs, error) {
	spec := model.TrainerSpec
	n := int32(len(model.Pieces))
	valid := func(id int32) int32 {
		if id < 0 || id >= n {
			return -1
		}
		return id
	}

	controls := ControlIDs{
		Pad: valid(spec.PadID),
		Unk: valid(spec.UnkID),
		BOS: valid(spec.BOSID),
		EOS: valid(spec.EOSID),
	}

	if controls.Unk < 0 || model.Pieces[controls.Unk].Type != PieceUnknown {
		controls.Unk = -1
		for i, p := range model.Pieces {
			if p.Type == PieceUnknown {
				controls.Unk = int32(i)
				break
			}
		}
	}
	if controls.Unk < 0 {
		return ControlIDs{}, fmt.Errorf("%w: no UNKNOWN piece", ErrInvalidModel)
	}

	return controls, nil
}

func schemeFromName(name string) Scheme {
	if strings.Contains(strings.ToLower(name), "nfkc") {
		return SchemeNFKC
	}
	return SchemeIdentity
}

// WithSequenceMarkers returns a copy of t that prepends bos and/or appends
// eos ids to every encoded sequence. Markers absent from the model are ignored.
func (t *Tokenizer) WithSequenceMarkers(bos, eos bool) *Tokenizer {
	c := *t
	c.addBOS = bos
	c.addEOS = eos
	return &c
}

// Close releases tokenizer resources.
func (t *Tokenizer) Close() error {
	return nil
}

// Normalize returns the canonical text that Decode(Encode(text)) reproduces.
func (t *Tokenizer) Normalize(text string) string {
	return t.normalizer.Normalize(text)
}

// Encode returns the piece ids of text.
func (t *Tokenizer) Encode(text string) ([]int32, error) {
	return t.EncodeWith(NewLattice(), text)
}

// EncodeWith encodes text using a caller-owned lattice workspace.
func (t *Tokenizer) EncodeWith(lat *Lattice, text string) ([]int32, error) {
	tokens, err := t.EncodePiecesWith(lat, text)
	if err != nil {
		return nil, err
	}

	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids, nil
}

// EncodePieces tokenizes text using the Viterbi algorithm, returning tokens
// with offsets into the escaped text.
func (t *Tokenizer) EncodePieces(text string) ([]Token, error) {
	return t.EncodePiecesWith(NewLattice(), text)
}

// EncodePiecesWith is EncodePieces with a caller-owned lattice workspace.
func (t *Tokenizer) EncodePiecesWith(lat *Lattice, text string) ([]Token, error) {
	if t.vocab == nil {
		return nil, ErrModelNotTrained
	}

	escaped := t.normalizer.Escape(text)

	var tokens []Token
	if t.addBOS && t.vocab.controls.BOS >= 0 {
		tokens = append(tokens, Token{ID: t.vocab.controls.BOS, Text: t.vocab.pieces[t.vocab.controls.BOS].Piece})
	}
	if escaped != "" {
		lat.Reset(t.vocab, escaped, -1)
		path, _ := lat.Viterbi()
		tokens = append(tokens, lat.Tokens(path)...)
	}
	if t.addEOS && t.vocab.controls.EOS >= 0 {
		end := len(escaped)
		tokens = append(tokens, Token{ID: t.vocab.controls.EOS, Text: t.vocab.pieces[t.vocab.controls.EOS].Piece, Start: end, End: end})
	}

	return tokens, nil
}

// Decode concatenates piece surfaces in order. Control pieces are skipped,
// runs of byte pieces are reassembled into UTF-8 (invalid bytes become
// U+FFFD), and the unknown piece decodes to its surface.
func (t *Tokenizer) Decode(ids []int32) (string, error) {
	if t.vocab == nil {
		return "", ErrModelNotTrained
	}

	var (
		builder strings.Builder
		pending []byte
	)
	flush := func() {
		for len(pending) > 0 {
			r, size := utf8.DecodeRune(pending)
			if r == utf8.RuneError && size <= 1 {
				builder.WriteRune(utf8.RuneError)
				size = 1
			} else {
				builder.Write(pending[:size])
			}
			pending = pending[size:]
		}
		pending = pending[:0]
	}

	for i, id := range ids {
		p, ok := t.vocab.Piece(id)
		if !ok {
			return "", fmt.Errorf("%w: %d at position %d (vocabulary size %d)", ErrUnknownID, id, i, t.vocab.Size())
		}

		if p.Type == PieceByte {
			pending = append(pending, t.vocab.byteOf[id])
			continue
		}
		flush()

		switch p.Type {
		case PieceControl, PieceUnused:
		case PieceUnknown:
			builder.WriteString(t.vocab.unkSurface)
		default:
			builder.WriteString(p.Piece)
		}
	}
	flush()

	return Unescape(builder.String()), nil
}

// VocabSize returns the number of pieces, control pieces included.
func (t *Tokenizer) VocabSize() int {
	if t.vocab == nil {
		return 0
	}
	return t.vocab.Size()
}

// IDToPiece returns the surface text of id.
func (t *Tokenizer) IDToPiece(id int32) (string, error) {
	if t.vocab == nil {
		return "", ErrModelNotTrained
	}
	p, ok := t.vocab.Piece(id)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return p.Piece, nil
}

// PieceToID returns the id of piece, or the unknown id when it is not in
// the vocabulary.
func (t *Tokenizer) PieceToID(piece string) int32 {
	if t.vocab == nil {
		return -1
	}
	if id, ok := t.vocab.Lookup(piece); ok {
		return id
	}
	return t.vocab.controls.Unk
}

// Vocabulary returns the immutable piece table.
func (t *Tokenizer) Vocabulary() *Vocabulary { return t.vocab }

// Model returns the model the tokenizer was built from.
func (t *Tokenizer) Model() *Model { return t.model }

// BOSID returns the beginning-of-sequence token ID, or -1.
func (t *Tokenizer) BOSID() int32 { return t.control(func(c ControlIDs) int32 { return c.BOS }) }

// PadID returns the padding token ID, or -1.
func (t *Tokenizer) PadID() int32 { return t.control(func(c ControlIDs) int32 { return c.Pad }) }

// EOSID returns the end-of-sequence token ID, or -1.
func (t *Tokenizer) EOSID() int32 { return t.control(func(c ControlIDs) int32 { return c.EOS }) }

// UnkID returns the unknown token ID, or -1.
func (t *Tokenizer) UnkID() int32 { return t.control(func(c ControlIDs) int32 { return c.Unk }) }

func (t *Tokenizer) control(pick func(ControlIDs) int32) int32 {
	if t.vocab == nil {
		return -1
	}
	return pick(t.vocab.controls)
}
