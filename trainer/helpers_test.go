package trainer

import (
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(vocabSize int) Config {
	cfg := DefaultConfig()
	cfg.VocabSize = vocabSize
	cfg.Threads = 2
	cfg.Logger = quietLogger()
	return cfg
}

func repeat(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return lines
}

func catCorpus(t *testing.T, cfg Config) *Corpus {
	t.Helper()
	corpus, err := NewCorpus(repeat("the cat sat on the mat", 1000), cfg)
	if err != nil {
		t.Fatalf("NewCorpus failed: %v", err)
	}
	return corpus
}

var multilingualLines = []string{
	"Once upon a time, in a faraway land, there lived a young princess who loved to read books.",
	"The quick brown fox jumps over the lazy dog.",
	"It was a bright cold day in April, and the clocks were striking thirteen.",
	"আমি বাংলায় গান গাই। আমি বাংলার গান গাই।",
	"আমার সোনার বাংলা, আমি তোমায় ভালোবাসি।",
	"বাংলা ভাষা আমার মাতৃভাষা। আমি বাংলায় কথা বলি, বাংলায় লিখি, বাংলায় স্বপ্ন দেখি।",
}
