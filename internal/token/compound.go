package token

import (
	"bufio"
	"os"
	"sort"
	"strings"
)

// CompoundDict holds multi-word terms matched against the token stream.
// Entries are normalized with the same rules as regular tokens, so
// "Bà Triệu" and "bà triệu" are the same entry.
type CompoundDict struct {
	// byFirst maps the first word of each compound to the candidate word
	// sequences starting with it, longest first.
	byFirst map[string][][]string
	size    int
}

// NewCompoundDict builds a dictionary from the given terms. Terms with
// fewer than two words are ignored.
func NewCompoundDict(terms []string) *CompoundDict {
	d := &CompoundDict{byFirst: make(map[string][][]string)}
	for _, term := range terms {
		d.add(term)
	}
	d.sortEntries()
	return d
}

// LoadCompoundDict reads one compound term per line from path and merges
// them with extra terms. Blank lines and lines starting with '#' are
// skipped.
func LoadCompoundDict(path string, extra []string) (*CompoundDict, error) {
	terms, err := ReadCompoundTerms(path)
	if err != nil {
		return nil, err
	}
	return NewCompoundDict(append(terms, extra...)), nil
}

// ReadCompoundTerms reads one compound term per line from path. Blank
// lines and lines starting with '#' are skipped. An empty path yields
// no terms.
func ReadCompoundTerms(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return terms, nil
}

// Empty reports whether the dictionary has no entries.
func (d *CompoundDict) Empty() bool {
	return d == nil || d.size == 0
}

// Len returns the number of compound entries.
func (d *CompoundDict) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

// MatchAt returns the length in words of the longest compound starting
// at words[i], or 0 when none matches.
func (d *CompoundDict) MatchAt(words []string, i int) int {
	if d == nil || i >= len(words) {
		return 0
	}
	for _, seq := range d.byFirst[words[i]] {
		if i+len(seq) > len(words) {
			continue
		}
		matched := true
		for j, w := range seq {
			if words[i+j] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(seq)
		}
	}
	return 0
}

func (d *CompoundDict) add(term string) {
	words := strings.Fields(normalize(term))
	if len(words) < 2 {
		return
	}
	first := words[0]
	for _, existing := range d.byFirst[first] {
		if equalWords(existing, words) {
			return
		}
	}
	d.byFirst[first] = append(d.byFirst[first], words)
	d.size++
}

// sortEntries orders candidates longest first so greedy matching prefers
// the longer compound.
func (d *CompoundDict) sortEntries() {
	for first := range d.byFirst {
		seqs := d.byFirst[first]
		sort.SliceStable(seqs, func(i, j int) bool {
			return len(seqs[i]) > len(seqs[j])
		})
	}
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
