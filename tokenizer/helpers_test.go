package tokenizer

import "testing"

type scored struct {
	piece string
	score float32
}

// buildModel returns a model with the default control layout followed by
// the given NORMAL pieces.
func buildModel(t *testing.T, pieces []scored, byteFallback bool) *Model {
	t.Helper()

	m := &Model{
		Pieces: []Piece{
			{Piece: PadPiece, Type: PieceControl},
			{Piece: UnkPiece, Type: PieceUnknown},
			{Piece: BOSPiece, Type: PieceControl},
			{Piece: EOSPiece, Type: PieceControl},
		},
		TrainerSpec:    defaultTrainerSpec(),
		NormalizerSpec: defaultNormalizerSpec(),
	}
	m.TrainerSpec.PadID, m.TrainerSpec.UnkID, m.TrainerSpec.BOSID, m.TrainerSpec.EOSID = 0, 1, 2, 3
	m.TrainerSpec.ByteFallback = byteFallback

	if byteFallback {
		for b := 0; b < 256; b++ {
			m.Pieces = append(m.Pieces, Piece{Piece: BytePiece(byte(b)), Type: PieceByte})
		}
	}
	for _, p := range pieces {
		m.Pieces = append(m.Pieces, Piece{Piece: p.piece, Score: p.score, Type: PieceNormal})
	}
	m.TrainerSpec.VocabSize = int32(len(m.Pieces))

	return m
}

func catPieces() []scored {
	return []scored{
		{"▁the", -1.5}, {"▁cat", -2}, {"▁sat", -2}, {"▁on", -2}, {"▁mat", -2},
		{"▁", -5}, {"t", -6}, {"h", -6}, {"e", -6}, {"c", -6},
		{"a", -6}, {"s", -6}, {"o", -6}, {"n", -6}, {"m", -6},
	}
}

func newTestTokenizer(t *testing.T, pieces []scored, byteFallback bool) *Tokenizer {
	t.Helper()
	tok, err := FromModel(buildModel(t, pieces, byteFallback))
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}
	return tok
}
