package trainer

import (
	"errors"
	"slices"
	"testing"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

func TestComputeCoverage(t *testing.T) {
	corpus, err := NewCorpus([]string{"aab"}, testConfig(100))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		threshold float64
		want      []rune
	}{
		{0.5, []rune{'a'}},
		{0.6, []rune{'a', 'b'}},
		{0.9995, []rune{'a', 'b', '▁'}},
		{1, []rune{'a', 'b', '▁'}},
	}

	for _, tt := range tests {
		cov := ComputeCoverage(corpus, tt.threshold)
		var got []rune
		for _, c := range cov.Required() {
			got = append(got, c.Char)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("threshold %g: required = %q, want %q", tt.threshold, string(got), string(tt.want))
		}
		if cov.Distinct() != 3 {
			t.Errorf("Distinct() = %d, want 3", cov.Distinct())
		}
	}
}

func candidatePieces(set *CandidateSet) []string {
	var out []string
	for _, c := range set.Candidates() {
		out = append(out, c.Piece)
	}
	return out
}

func buildSeeds(t *testing.T, cfg Config, maxLen, limit int, lines ...string) *CandidateSet {
	t.Helper()
	corpus, err := NewCorpus(lines, cfg)
	if err != nil {
		t.Fatal(err)
	}
	set, err := BuildSeeds(corpus, ComputeCoverage(corpus, 1), maxLen, limit)
	if err != nil {
		t.Fatalf("BuildSeeds failed: %v", err)
	}
	return set
}

func TestBuildSeeds_Ranking(t *testing.T) {
	set := buildSeeds(t, testConfig(100), 16, 0, "ab ab")

	want := []string{"▁ab", "ab", "▁a"}
	if got := candidatePieces(set); !slices.Equal(got, want) {
		t.Errorf("candidates = %q, want %q", got, want)
	}
	for _, c := range set.Candidates() {
		if c.Freq != 2 {
			t.Errorf("%q freq = %d, want 2", c.Piece, c.Freq)
		}
	}
}

func TestBuildSeeds_SpaceOnlyAtStart(t *testing.T) {
	set := buildSeeds(t, testConfig(100), 16, 0, "hello world")

	for _, p := range candidatePieces(set) {
		for i, r := range []rune(p) {
			if r == tokenizer.SpaceSymbol && i > 0 {
				t.Errorf("candidate %q crosses a word boundary", p)
			}
		}
	}
	if !slices.Contains(candidatePieces(set), "▁world") {
		t.Error("missing candidate ▁world")
	}
}

func TestBuildSeeds_Limits(t *testing.T) {
	set := buildSeeds(t, testConfig(100), 3, 0, "abcdef")
	for _, c := range set.Candidates() {
		if n := len([]rune(c.Piece)); n > 3 {
			t.Errorf("candidate %q has %d runes, limit 3", c.Piece, n)
		}
	}

	limited := buildSeeds(t, testConfig(100), 16, 4, "abcdef")
	if limited.Len() != 4 {
		t.Errorf("Len() = %d, want 4", limited.Len())
	}
}

func TestBuildSeeds_Scripts(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		scheme  tokenizer.Scheme
		want    string
		notWant string
	}{
		{"latin and digit", "a1", tokenizer.SchemeNFKC, "▁a", "a1"},
		{"digits together", "2024", tokenizer.SchemeNFKC, "▁2024", ""},
		{"latin and punctuation", "cat.", tokenizer.SchemeNFKC, "▁cat", "cat."},
		{"combining mark", "e\u0301x", tokenizer.SchemeIdentity, "e\u0301x", ""},
		{"bengali word", "বাংলা", tokenizer.SchemeNFKC, "▁বাংলা", ""},
		{"bengali and latin", "বাংলাx", tokenizer.SchemeNFKC, "▁বাংলা", "লাx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(100)
			cfg.Normalization = tt.scheme
			got := candidatePieces(buildSeeds(t, cfg, 16, 0, tt.line))
			if !slices.Contains(got, tt.want) {
				t.Errorf("candidates %q missing %q", got, tt.want)
			}
			if tt.notWant != "" && slices.Contains(got, tt.notWant) {
				t.Errorf("candidates %q contain %q", got, tt.notWant)
			}
		})
	}
}

func TestBuildSeeds_SkipsUncovered(t *testing.T) {
	corpus, err := NewCorpus(append(repeat("aaaa", 50), "abz"), testConfig(100))
	if err != nil {
		t.Fatal(err)
	}
	cov := ComputeCoverage(corpus, 0.99)
	if cov.Covers('z') {
		t.Fatal("rare character unexpectedly covered")
	}

	set, err := BuildSeeds(corpus, cov, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range candidatePieces(set) {
		if !cov.CoversString(p) {
			t.Errorf("candidate %q holds an uncovered character", p)
		}
	}
}

func TestBuildSeeds_EmptyCorpus(t *testing.T) {
	if _, err := BuildSeeds(&Corpus{}, &Coverage{}, 16, 0); !errors.Is(err, ErrCorpusEmpty) {
		t.Errorf("BuildSeeds error = %v, want ErrCorpusEmpty", err)
	}
}
