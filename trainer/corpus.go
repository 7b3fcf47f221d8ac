package trainer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// Sentence is a distinct training line in piece space (normalized and
// escaped) with the number of times it occurred.
type Sentence struct {
	Text string
	Freq int64
}

// Corpus is the read-only training text: distinct sentences in order of
// first appearance.
type Corpus struct {
	sentences []Sentence
	lines     int64
	chars     int64
	skipped   int
}

// Sentences returns the distinct sentences. The slice must not be modified.
func (c *Corpus) Sentences() []Sentence { return c.sentences }

// Len returns the number of distinct sentences.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sentences)
}

// Lines returns the number of accepted lines, duplicates included.
func (c *Corpus) Lines() int64 { return c.lines }

// Chars returns the number of code points over all accepted lines.
func (c *Corpus) Chars() int64 { return c.chars }

// Skipped returns the number of lines dropped for exceeding the length limit.
func (c *Corpus) Skipped() int { return c.skipped }

// CorpusBuilder accumulates lines into a Corpus.
type CorpusBuilder struct {
	normalizer tokenizer.Normalizer
	maxLen     int
	logger     *slog.Logger

	index     map[string]int
	sentences []Sentence
	lines     int64
	chars     int64
	skipped   int
}

// NewCorpusBuilder returns a builder applying the normalization and length
// limit of cfg.
func NewCorpusBuilder(cfg Config) *CorpusBuilder {
	return &CorpusBuilder{
		normalizer: tokenizer.Normalizer{Scheme: cfg.scheme()},
		maxLen:     cfg.MaxSentenceLength,
		logger:     cfg.logger(),
		index:      make(map[string]int),
	}
}

// Add normalizes and records one line without its terminator. Lines longer
// than the length limit in bytes are skipped; blank lines are ignored.
func (b *CorpusBuilder) Add(line string) {
	if b.maxLen > 0 && len(line) > b.maxLen {
		b.skipped++
		return
	}

	text := b.normalizer.Escape(line)
	if text == "" {
		return
	}

	b.lines++
	b.chars += int64(utf8.RuneCountInString(text))
	if i, ok := b.index[text]; ok {
		b.sentences[i].Freq++
		return
	}
	b.index[text] = len(b.sentences)
	b.sentences = append(b.sentences, Sentence{Text: text, Freq: 1})
}

// ReadFrom adds every line of r. Lines may be arbitrarily long.
func (b *CorpusBuilder) ReadFrom(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var n int64
	for {
		line, err := br.ReadString('\n')
		n += int64(len(line))
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" {
			b.Add(line)
		}
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("reading corpus: %w", err)
		}
	}
}

// Build returns the corpus. It fails with ErrCorpusEmpty when no line
// survived normalization.
func (b *CorpusBuilder) Build() (*Corpus, error) {
	if b.skipped > 0 {
		b.logger.Warn("skipped over-long corpus lines", "count", b.skipped, "max_bytes", b.maxLen)
	}
	if len(b.sentences) == 0 {
		return nil, ErrCorpusEmpty
	}

	return &Corpus{
		sentences: b.sentences,
		lines:     b.lines,
		chars:     b.chars,
		skipped:   b.skipped,
	}, nil
}

// NewCorpus builds a corpus from in-memory lines.
func NewCorpus(lines []string, cfg Config) (*Corpus, error) {
	b := NewCorpusBuilder(cfg)
	for _, line := range lines {
		b.Add(line)
	}
	return b.Build()
}

// ReadCorpus builds a corpus from newline-separated text.
func ReadCorpus(r io.Reader, cfg Config) (*Corpus, error) {
	b := NewCorpusBuilder(cfg)
	if _, err := b.ReadFrom(r); err != nil {
		return nil, err
	}
	return b.Build()
}

// LoadCorpus builds a corpus from one or more text files.
func LoadCorpus(cfg Config, paths ...string) (*Corpus, error) {
	b := NewCorpusBuilder(cfg)
	for _, path := range paths {
		if err := b.readFile(path); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (b *CorpusBuilder) readFile(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := b.ReadFrom(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
