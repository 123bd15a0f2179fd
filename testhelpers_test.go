package scanless

import (
	"regexp"
	"testing"

	"github.com/scanlessgo/scanless/trie"
)

func newTestTrie(literals ...string) *trie.Trie {
	tr := trie.New(trie.CaseSensitive)
	for _, l := range literals {
		tr.Add(l, l)
	}
	return tr
}

func mustRegexp(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("invalid regexp %q: %v", pattern, err)
	}
	return re
}
