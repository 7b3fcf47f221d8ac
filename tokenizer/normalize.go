package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SpaceSymbol marks word starts inside pieces. It replaces every space of the
// normalized text and is prepended to the first word as a dummy prefix.
const SpaceSymbol = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// Scheme names a normalization rule. The values match SentencePiece
// normalizer names so they survive a round trip through the model file.
type Scheme string

const (
	SchemeNFKC     Scheme = "nmt_nfkc"
	SchemeIdentity Scheme = "identity"
)

// ParseScheme accepts the persisted names plus the short aliases "nfkc" and "none".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nfkc", "nmt_nfkc":
		return SchemeNFKC, nil
	case "none", "identity":
		return SchemeIdentity, nil
	default:
		return "", fmt.Errorf("%w: unknown normalization %q (want nfkc|none)", ErrInvalidConfiguration, s)
	}
}

// Normalizer canonicalizes raw text before segmentation. The zero value
// applies no Unicode normalization but still folds whitespace.
type Normalizer struct {
	Scheme Scheme
}

// Normalize returns the canonical form of text: control characters dropped,
// Unicode normalization per scheme, whitespace runs (and SpaceSymbol)
// collapsed to a single space, leading and trailing whitespace trimmed.
// Normalize is idempotent and Decode(Encode(x)) reproduces Normalize(x).
func (n Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Strip controls first: NFKC must see the final neighbours of every mark.
	text = strings.Map(func(r rune) rune {
		if isControl(r) && !isSpace(r) {
			return -1
		}
		return r
	}, text)
	if n.Scheme == SchemeNFKC {
		text = norm.NFKC.String(text)
	}

	var builder strings.Builder
	builder.Grow(len(text))
	pendingSpace := false

	for _, r := range text {
		switch {
		case isSpace(r):
			if builder.Len() > 0 {
				pendingSpace = true
			}
		default:
			if pendingSpace {
				builder.WriteByte(' ')
				pendingSpace = false
			}
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// Escape normalizes text and rewrites it into piece space: a dummy prefix
// SpaceSymbol before the first word and SpaceSymbol for every space.
func (n Normalizer) Escape(text string) string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return ""
	}
	return string(SpaceSymbol) + strings.ReplaceAll(normalized, " ", string(SpaceSymbol))
}

// Unescape reverses Escape on concatenated piece text.
func Unescape(pieces string) string {
	out := strings.ReplaceAll(pieces, string(SpaceSymbol), " ")
	return strings.TrimPrefix(out, " ")
}

func isSpace(r rune) bool {
	return r == SpaceSymbol || unicode.IsSpace(r)
}

// isControl reports characters removed during normalization: C0/C1 controls
// other than whitespace, zero-width format characters and the BOM.
func isControl(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	switch r {
	case 0x00AD, 0x200B, 0x200E, 0x200F, 0x2060, 0xFEFF:
		return true
	}
	return false
}
