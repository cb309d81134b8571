// Package keyword provides the name-token index used for multi-word
// holding searches.
package keyword

import (
	"slices"
	"sort"
	"strings"
)

// Index maps lowercase name tokens to the ordered collection positions whose
// name contains the token.
type Index struct {
	buckets map[string][]int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{buckets: make(map[string][]int)}
}

// Tokenize lowercases s and splits it on whitespace. A blank string yields no
// tokens.
func Tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// Add indexes every token of name at pos. A word repeated within one name is
// recorded once.
func (ix *Index) Add(name string, pos int) {
	for _, token := range Tokenize(name) {
		bucket := ix.buckets[token]
		if slices.Contains(bucket, pos) {
			continue
		}
		ix.buckets[token] = append(bucket, pos)
	}
}

// RemoveAt drops pos from every bucket and shifts the positions after it down
// by one. Buckets left empty are deleted.
func (ix *Index) RemoveAt(pos int) {
	for token, bucket := range ix.buckets {
		kept := bucket[:0]
		for _, p := range bucket {
			switch {
			case p == pos:
				continue
			case p > pos:
				kept = append(kept, p-1)
			default:
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(ix.buckets, token)
			continue
		}
		ix.buckets[token] = kept
	}
}

// Lookup returns a copy of the positions indexed under token.
func (ix *Index) Lookup(token string) []int {
	return slices.Clone(ix.buckets[strings.ToLower(token)])
}

// Query returns the positions present in the bucket of every token, in bucket
// order. An unknown token yields no positions. An empty token list also yields
// nil; callers wanting "everything" must handle that case themselves.
func (ix *Index) Query(tokens []string) []int {
	if len(tokens) == 0 {
		return nil
	}

	result := ix.Lookup(tokens[0])
	for _, token := range tokens[1:] {
		if len(result) == 0 {
			return nil
		}
		bucket := ix.buckets[strings.ToLower(token)]
		result = slices.DeleteFunc(result, func(p int) bool {
			return !slices.Contains(bucket, p)
		})
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Len returns the number of distinct tokens.
func (ix *Index) Len() int {
	return len(ix.buckets)
}

// Tokens returns the indexed tokens in sorted order.
func (ix *Index) Tokens() []string {
	tokens := make([]string, 0, len(ix.buckets))
	for token := range ix.buckets {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
