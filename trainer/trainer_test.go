package trainer

import (
	"context"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

func train(t *testing.T, cfg Config, corpus *Corpus) *tokenizer.Model {
	t.Helper()
	model, err := Train(context.Background(), cfg, corpus)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return model
}

func mustTokenizer(t *testing.T, model *tokenizer.Model) *tokenizer.Tokenizer {
	t.Helper()
	tok, err := tokenizer.FromModel(model)
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}
	return tok
}

func TestTrain_CatScenario(t *testing.T) {
	cfg := testConfig(30)
	model := train(t, cfg, catCorpus(t, cfg))

	if len(model.Pieces) != 30 {
		t.Fatalf("vocabulary has %d pieces, want 30", len(model.Pieces))
	}

	wantControls := []string{tokenizer.PadPiece, tokenizer.UnkPiece, tokenizer.BOSPiece, tokenizer.EOSPiece}
	for id, want := range wantControls {
		if model.Pieces[id].Piece != want {
			t.Errorf("piece %d = %q, want %q", id, model.Pieces[id].Piece, want)
		}
	}

	scores := make(map[string]float32)
	maxSingle := float32(-1e30)
	for _, p := range model.Pieces[4:] {
		scores[p.Piece] = p.Score
		if utf8.RuneCountInString(p.Piece) == 1 && p.Score > maxSingle {
			maxSingle = p.Score
		}
	}
	if _, ok := scores["▁"]; !ok {
		t.Error("word boundary piece ▁ missing")
	}
	for _, word := range []string{"▁the", "▁cat", "▁sat", "▁on", "▁mat"} {
		score, ok := scores[word]
		if !ok {
			t.Errorf("piece %q missing", word)
			continue
		}
		if score <= maxSingle {
			t.Errorf("score(%q) = %v, not above best single character %v", word, score, maxSingle)
		}
	}

	tok := mustTokenizer(t, model)
	input := "the cat sat on the mat"
	ids, err := tok.Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if slices.Contains(ids, tok.UnkID()) {
		t.Errorf("Encode(%q) = %v contains unk", input, ids)
	}
	got, err := tok.Decode(ids)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != input {
		t.Errorf("Decode(Encode(%q)) = %q", input, got)
	}
}

func TestTrain_UnknownCharacter(t *testing.T) {
	cfg := testConfig(30)
	tok := mustTokenizer(t, train(t, cfg, catCorpus(t, cfg)))

	ids, err := tok.Encode("🙂")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !slices.Contains(ids, tok.UnkID()) {
		t.Errorf("Encode(emoji) = %v, want unk id %d", ids, tok.UnkID())
	}
	if _, err := tok.Decode(ids); err != nil {
		t.Errorf("Decode of unk failed: %v", err)
	}
}

func TestTrain_Totality(t *testing.T) {
	cfg := testConfig(30)
	tok := mustTokenizer(t, train(t, cfg, catCorpus(t, cfg)))

	// Every character is covered but the words never occur in training.
	input := "mast ache nose"
	ids, err := tok.Encode(input)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(ids) == 0 || slices.Contains(ids, tok.UnkID()) {
		t.Errorf("Encode(%q) = %v", input, ids)
	}
	if got, _ := tok.Decode(ids); got != input {
		t.Errorf("Decode = %q, want %q", got, input)
	}
}

func TestTrain_MultilingualRoundTrip(t *testing.T) {
	cfg := testConfig(120)
	cfg.CharacterCoverage = 1
	corpus, err := NewCorpus(multilingualLines, cfg)
	if err != nil {
		t.Fatal(err)
	}

	model := train(t, cfg, corpus)
	if len(model.Pieces) != 120 {
		t.Fatalf("vocabulary has %d pieces, want 120", len(model.Pieces))
	}

	tok := mustTokenizer(t, model)
	for _, line := range multilingualLines {
		ids, err := tok.Encode(line)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if slices.Contains(ids, tok.UnkID()) {
			t.Errorf("Encode(%q) contains unk", line)
		}
		got, err := tok.Decode(ids)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if want := tok.Normalize(line); got != want {
			t.Errorf("round trip of %q = %q", want, got)
		}
	}
}

func TestTrain_Deterministic(t *testing.T) {
	cfg := testConfig(120)
	corpus, err := NewCorpus(multilingualLines, cfg)
	if err != nil {
		t.Fatal(err)
	}

	first := train(t, cfg, corpus)
	second := train(t, cfg, corpus)
	if !reflect.DeepEqual(first.Pieces, second.Pieces) {
		t.Error("two runs with the same configuration produced different vocabularies")
	}
}

func TestTrain_ByteFallback(t *testing.T) {
	cfg := testConfig(4 + 256 + 15)
	cfg.ByteFallback = true
	model := train(t, cfg, catCorpus(t, cfg))

	if len(model.Pieces) != cfg.VocabSize {
		t.Fatalf("vocabulary has %d pieces, want %d", len(model.Pieces), cfg.VocabSize)
	}
	if model.Pieces[4].Piece != "<0x00>" || model.Pieces[259].Piece != "<0xFF>" {
		t.Errorf("byte pieces not at ids 4-259: %q, %q", model.Pieces[4].Piece, model.Pieces[259].Piece)
	}

	tok := mustTokenizer(t, model)
	input := "the cat 🙂"
	ids, _ := tok.Encode(input)
	if slices.Contains(ids, tok.UnkID()) {
		t.Errorf("Encode(%q) = %v contains unk with byte fallback", input, ids)
	}
	if got, _ := tok.Decode(ids); got != input {
		t.Errorf("Decode = %q, want %q", got, input)
	}
}

func TestTrain_ConvergenceErrors(t *testing.T) {
	tests := []struct {
		name   string
		vocab  int
		modify func(*Config)
		stage  Stage
	}{
		{"too few candidates", 100, nil, StageSeed},
		{"required characters exceed target", 10, nil, StageSeed},
		{"rounds exhausted", 30, func(c *Config) { c.MaxRounds = 1 }, StageEM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.vocab)
			if tt.modify != nil {
				tt.modify(&cfg)
			}

			_, err := Train(context.Background(), cfg, catCorpus(t, cfg))
			if !errors.Is(err, ErrConvergence) {
				t.Fatalf("Train error = %v, want ErrConvergence", err)
			}
			var te *TrainError
			if !errors.As(err, &te) {
				t.Fatalf("Train error %T is not a *TrainError", err)
			}
			if te.Stage != tt.stage || te.Target != tt.vocab {
				t.Errorf("TrainError stage %s target %d, want %s %d", te.Stage, te.Target, tt.stage, tt.vocab)
			}
		})
	}
}

func TestTrain_CorpusEmpty(t *testing.T) {
	_, err := Train(context.Background(), testConfig(30), nil)
	if !errors.Is(err, ErrCorpusEmpty) {
		t.Errorf("Train error = %v, want ErrCorpusEmpty", err)
	}
}

func TestTrain_InvalidConfiguration(t *testing.T) {
	cfg := testConfig(4)
	if _, err := New(cfg); !errors.Is(err, tokenizer.ErrInvalidConfiguration) {
		t.Errorf("New error = %v, want ErrInvalidConfiguration", err)
	}

	cfg = testConfig(30)
	cfg.ModelType = tokenizer.ModelBPE
	if _, err := New(cfg); !errors.Is(err, tokenizer.ErrInvalidConfiguration) {
		t.Errorf("New(bpe) error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestTrain_Cancelled(t *testing.T) {
	cfg := testConfig(30)
	corpus := catCorpus(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, cfg, corpus)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Train error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrConvergence) {
		t.Error("cancellation reported as a convergence failure")
	}
}

func TestTrain_TimeBudget(t *testing.T) {
	cfg := testConfig(30)
	cfg.TimeBudget = time.Nanosecond
	corpus := catCorpus(t, cfg)

	_, err := Train(context.Background(), cfg, corpus)
	if !errors.Is(err, ErrConvergence) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Train error = %v, want ErrConvergence wrapping DeadlineExceeded", err)
	}
}

func TestTrain_CharModel(t *testing.T) {
	cfg := testConfig(8)
	cfg.ModelType = tokenizer.ModelChar
	corpus, err := NewCorpus([]string{"abc abc"}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	model := train(t, cfg, corpus)
	if len(model.Pieces) != 8 || model.TrainerSpec.ModelType != tokenizer.ModelChar {
		t.Fatalf("got %d pieces of type %s", len(model.Pieces), model.TrainerSpec.ModelType)
	}
	tok := mustTokenizer(t, model)
	ids, _ := tok.Encode("cab")
	if len(ids) != 4 {
		t.Errorf("Encode(cab) = %v, want 4 single-character pieces", ids)
	}

	cfg.VocabSize = 9
	if _, err := Train(context.Background(), cfg, corpus); !errors.Is(err, ErrConvergence) {
		t.Errorf("Train error = %v, want ErrConvergence", err)
	}
}

func TestTrain_WordModel(t *testing.T) {
	cfg := testConfig(15)
	cfg.ModelType = tokenizer.ModelWord
	corpus, err := NewCorpus([]string{"the cat the dog"}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	model := train(t, cfg, corpus)
	tok := mustTokenizer(t, model)
	if tok.VocabSize() != 15 {
		t.Fatalf("VocabSize() = %d, want 15", tok.VocabSize())
	}
	vocab := tok.Vocabulary()
	for _, w := range []string{"▁the", "▁cat"} {
		if _, ok := vocab.Lookup(w); !ok {
			t.Errorf("word %q missing", w)
		}
	}
	if _, ok := vocab.Lookup("▁dog"); ok {
		t.Error("word ▁dog kept beyond capacity")
	}

	ids, _ := tok.Encode("the dog")
	if got, _ := tok.Decode(ids); got != "the dog" {
		t.Errorf("Decode = %q, want %q", got, "the dog")
	}

	cfg.VocabSize = 17
	if _, err := Train(context.Background(), cfg, corpus); !errors.Is(err, ErrConvergence) {
		t.Errorf("Train error = %v, want ErrConvergence", err)
	}
}

func TestFinalize(t *testing.T) {
	learned := logShares([]string{"▁a", "b", "c"}, []int64{1, 6, 3})

	model, err := finalize(testConfig(7), learned)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	var got []string
	var total float64
	for _, p := range model.Pieces[4:] {
		got = append(got, p.Piece)
		total += math.Exp(float64(p.Score))
	}
	if want := []string{"b", "c", "▁a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("learned pieces = %v, want %v by descending score", got, want)
	}
	if math.Abs(total-1) > 1e-5 {
		t.Errorf("learned probabilities sum to %v, want 1", total)
	}
	for _, p := range model.Pieces[:4] {
		if p.Score != 0 {
			t.Errorf("control piece %q score = %v, want 0", p.Piece, p.Score)
		}
	}
}

func TestFinalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		learned []string
		want    error
	}{
		{"size mismatch", 7, []string{"a", "b"}, ErrConvergence},
		{"duplicate of control piece", 6, []string{"a", tokenizer.UnkPiece}, tokenizer.ErrInvalidModel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			freqs := make([]int64, len(tc.learned))
			for i := range freqs {
				freqs[i] = 1
			}

			_, err := finalize(testConfig(tc.size), logShares(tc.learned, freqs))
			if !errors.Is(err, tc.want) {
				t.Fatalf("finalize error = %v, want %v", err, tc.want)
			}
			var te *TrainError
			if !errors.As(err, &te) || te.Stage != StageFinalize {
				t.Errorf("finalize error = %#v, want a TrainError at stage %q", err, StageFinalize)
			}
		})
	}
}
