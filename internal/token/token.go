// Package token provides deterministic text tokenization with
// diacritic-aware normalization and compound-term detection.
//
// Tokenization is pure: the same input always yields the same token
// sequence, which the index cache key depends on.
package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer converts text into a normalized token sequence.
// A nil compound dictionary disables compound detection.
type Tokenizer struct {
	compounds *CompoundDict
}

// NewTokenizer creates a tokenizer with the given compound dictionary.
// Pass nil to tokenize without compound detection.
func NewTokenizer(compounds *CompoundDict) *Tokenizer {
	return &Tokenizer{compounds: compounds}
}

// Tokenize returns the ordered token sequence for text.
//
// Base tokens are lowercased, NFC-normalized words with punctuation
// stripped. When a dictionary compound matches (greedy, longest match
// first), the compound token is emitted at the match position in
// addition to its constituents, so both compound-level and word-level
// matching work downstream. Compound tokens contain spaces; base tokens
// never do.
func (t *Tokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	if t.compounds == nil || t.compounds.Empty() {
		return words
	}

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if n := t.compounds.MatchAt(words, i); n > 0 {
			out = append(out, strings.Join(words[i:i+n], " "))
			out = append(out, words[i:i+n]...)
			i += n
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

// Words returns only the normalized base tokens, without compound
// detection. The count of base tokens defines a chunk's length for
// lexical scoring.
func (t *Tokenizer) Words(text string) []string {
	return strings.Fields(normalize(text))
}

// IsCompound reports whether tok is a compound token.
func IsCompound(tok string) bool {
	return strings.ContainsRune(tok, ' ')
}

// BaseCount counts the base (non-compound) tokens in a token sequence.
func BaseCount(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if !IsCompound(tok) {
			n++
		}
	}
	return n
}

// normalize lowercases, applies Unicode NFC so diacritics compare
// consistently, and replaces punctuation with spaces.
func normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
