//go:build ignore

// Write the English and Bengali sample training corpus and benchmark sample
// files.
// Usage: go run ./scripts/make-sample-corpus.go [OUT_DIR]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// repeats makes the corpus large enough for a few thousand pieces.
const repeats = 100

var englishLines = []string{
	"Once upon a time, in a faraway land, there lived a young princess who loved to read books.",
	"The quick brown fox jumps over the lazy dog. This sentence contains every letter of the alphabet.",
	"In the beginning was the Word, and the Word was with God, and the Word was God.",
	"It was the best of times, it was the worst of times, it was the age of wisdom, it was the age of foolishness.",
	"Call me Ishmael. Some years ago - never mind how long precisely - having little or no money in my purse.",
	"All happy families are alike; each unhappy family is unhappy in its own way.",
	"It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
	"In a hole in the ground there lived a hobbit. Not a nasty, dirty, wet hole, filled with the ends of worms.",
	"The story so far: In the beginning the Universe was created. This has made a lot of people very angry.",
	"I am an invisible man. No, I am not a spook like those who haunted Edgar Allan Poe.",
	"Whether I shall turn out to be the hero of my own life, or whether that station will be held by anybody else.",
	"Happy families are all alike; every unhappy family is unhappy in its own way.",
	"It was a bright cold day in April, and the clocks were striking thirteen.",
	"Far out in the uncharted backwaters of the unfashionable end of the western spiral arm of the Galaxy.",
	"The past is a foreign country; they do things differently there.",
}

// Tagore and others, public domain.
var bengaliLines = []string{
	"আমি বাংলায় গান গাই। আমি বাংলার গান গাই। আমি আমার আমিকে চিরদিন এই বাংলায় খুঁজে পাই।",
	"আমার সোনার বাংলা, আমি তোমায় ভালোবাসি। চিরদিন তোমার আকাশ, তোমার বাতাস, আমার প্রাণে বাজায় বাঁশি।",
	"পথের দেবতা, প্রাণের দেবতা, সত্যের দেবতা। আমার মাথার উপর আকাশে তোমার পবিত্র পাদপীঠ।",
	"জীবন যখন শুকায়ে যায় করুণাধারায় এসো, সকরুণ প্রভু, এসো। হৃদয় যখন থাকে না আর সত্যের মাঝে।",
	"আমার এই পথ চাওয়াতেই আনন্দ। আমার এই কথা বলাতেই আনন্দ। আমার এই গান গাওয়াতেই আনন্দ।",
	"কবির লেখা কবিতা কবিতায় পরিণত হয় যখন পাঠক তা পাঠ করে। লেখকের হাতে শুধু শব্দ থাকে।",
	"বাংলা ভাষা আমার মাতৃভাষা। আমি বাংলায় কথা বলি, বাংলায় লিখি, বাংলায় স্বপ্ন দেখি।",
	"একুশে ফেব্রুয়ারি আমাদের ভাষা আন্দোলনের দিন। শহীদদের স্মরণে আমরা শ্রদ্ধা জানাই।",
	"পৃথিবীতে যত সুন্দর জিনিস আছে, তার সবকিছুই প্রকৃতির দান। আমরা তা রক্ষা করতে হবে।",
	"শিক্ষাই জাতির মেরুদণ্ড। শিক্ষা ছাড়া কোনো জাতি উন্নতি করতে পারে না।",
	"মানুষ তার স্বপ্ন দিয়ে বাঁচে। স্বপ্ন না থাকলে জীবন অর্থহীন হয়ে যায়।",
	"বই মানুষের সবচেয়ে ভালো বন্ধু। বই পড়ে আমরা জ্ঞান অর্জন করি।",
	"সময় এবং স্রোত কারো জন্য অপেক্ষা করে না। তাই সময়ের সদ্ব্যবহার করা উচিত।",
	"পরিশ্রম সৌভাগ্যের প্রসূতি। পরিশ্রম ছাড়া সাফল্য লাভ করা যায় না।",
	"সততাই সর্বোত্তম পন্থা। সত্যবাদী মানুষ সবার কাছে প্রিয় হয়।",
}

// Benchmark samples, one per line under a "# Language:" header.
var sampleFiles = map[string]string{
	"english.txt": `# Language: English
# Title: Opening lines

Once upon a time, there was a little girl who loved to read.
The quick brown fox jumps over the lazy dog.
In the beginning was the Word, and the Word was with God.
`,
	"bengali.txt": `# Language: Bengali
# Title: Everyday sentences

আমি বাংলাদেশ থেকে এসেছি। আমি একটি ভাষা মডেল তৈরি করছি।
আমার সোনার বাংলা, আমি তোমায় ভালোবাসি।
শিক্ষাই জাতির মেরুদণ্ড। শিক্ষা ছাড়া কোনো জাতি উন্নতি করতে পারে না।
`,
}

func main() {
	outDir := "testdata/corpus"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	samplesDir := filepath.Join(outDir, "samples")

	if err := os.MkdirAll(samplesDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", samplesDir, err)
		os.Exit(1)
	}

	english := repeat(englishLines)
	bengali := repeat(bengaliLines)

	files := []struct {
		name string
		text string
	}{
		{"train_en.txt", english},
		{"train_bn.txt", bengali},
		{"train_combined.txt", english + "\n" + bengali},
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, []byte(f.text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  -> %s (%d lines)\n", path, strings.Count(f.text, "\n"))
	}

	for name, text := range sampleFiles {
		path := filepath.Join(samplesDir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  -> %s\n", path)
	}

	fmt.Printf("\nDone! Train with: unigram train -o %s %s\n",
		filepath.Join(outDir, "tokenizer"), filepath.Join(outDir, "train_combined.txt"))
}

func repeat(lines []string) string {
	block := strings.Join(lines, "\n") + "\n"
	return strings.Repeat(block, repeats)
}
