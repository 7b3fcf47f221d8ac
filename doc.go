// Package unigram trains and applies unigram language model subword
// tokenizers compatible with the SentencePiece model format.
//
// # Quick Start
//
//	cfg := trainer.DefaultConfig()
//	cfg.VocabSize = 8000
//	proc, err := unigram.TrainFiles(ctx, []string{"corpus.txt"}, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Close()
//
//	ids, err := proc.Encode("আমি বাংলায় গান গাই।")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := proc.Decode(ids)
//
// Decode(Encode(x)) returns Normalize(x) for any x whose characters were
// covered during training.
//
// # Thread Safety
//
// Processor is safe for concurrent use. The vocabulary is immutable once
// trained or loaded; EncodeBatch shares a pool of segmentation workspaces
// sized by WithPoolSize.
//
// # Model Files
//
// Save writes {prefix}.model in the SentencePiece ModelProto format and a
// {prefix}.vocab listing with one piece and score per line.
package unigram
