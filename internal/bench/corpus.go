// Package bench measures how compactly trained tokenizers encode text.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Header contains metadata parsed from a sample file header.
type Header struct {
	Language string
	Source   string
	Title    string
}

// ParseHeader extracts metadata from sample header comments.
// Returns the header, remaining text after header, and any error.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	bodyStart := len(text)
	var lineEnd int

	for scanner.Scan() {
		line := scanner.Text()
		lineEnd += len(line) + 1 // +1 for newline

		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bodyStart = lineEnd - len(line) - 1
			break
		}

		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(line, "Language:"); ok {
			h.Language = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Language == "" {
		return Header{}, "", errors.New("missing Language in header")
	}

	body := strings.TrimSpace(text[bodyStart:])

	return h, body, nil
}

// SampleSet is a group of benchmark texts in one language.
type SampleSet struct {
	ID       string // filename without extension
	Language string
	Source   string
	Title    string
	Samples  []string
}

// splitSamples returns the non-empty body lines; each line is one sample.
func splitSamples(body string) []string {
	var samples []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			samples = append(samples, line)
		}
	}
	return samples
}

// LoadSampleSet loads and parses a sample file.
func LoadSampleSet(path string) (*SampleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	samples := splitSamples(body)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples in %s", path)
	}

	base := filepath.Base(path)
	return &SampleSet{
		ID:       strings.TrimSuffix(base, filepath.Ext(base)),
		Language: header.Language,
		Source:   header.Source,
		Title:    header.Title,
		Samples:  samples,
	}, nil
}

// LoadSamples loads all .txt sample files from a directory, in name order.
func LoadSamples(dir string) ([]*SampleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var sets []*SampleSet
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		set, err := LoadSampleSet(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("no sample files in %s", dir)
	}
	return sets, nil
}

// DefaultSamples returns the built-in English and Bengali benchmark texts.
func DefaultSamples() []*SampleSet {
	return []*SampleSet{
		{
			ID:       "english",
			Language: "English",
			Samples: []string{
				"Once upon a time, there was a little girl who loved to read.",
				"The quick brown fox jumps over the lazy dog.",
				"In the beginning was the Word, and the Word was with God.",
			},
		},
		{
			ID:       "bengali",
			Language: "Bengali",
			Samples: []string{
				"আমি বাংলাদেশ থেকে এসেছি। আমি একটি ভাষা মডেল তৈরি করছি।",
				"আমার সোনার বাংলা, আমি তোমায় ভালোবাসি।",
				"শিক্ষাই জাতির মেরুদণ্ড। শিক্ষা ছাড়া কোনো জাতি উন্নতি করতে পারে না।",
			},
		},
	}
}
