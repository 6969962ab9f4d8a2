package match

import (
	"strings"
	"unicode"
)

// Name is a type or member name prepared for comparison.
type Name struct {
	// Path holds the folded segments before the last dot: the package of
	// "store.Order" or the sub-instance of "sub.d1".
	Path []string
	// Leaf is the folded last segment.
	Leaf string
}

// Parse splits s on dots and folds every segment. An import path keeps its
// last element only, so "class-composer/store.Order" and "store.Order"
// parse the same.
func Parse(s string) Name {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}

	segs := strings.Split(s, ".")

	n := Name{Leaf: Fold(segs[len(segs)-1])}
	for _, seg := range segs[:len(segs)-1] {
		n.Path = append(n.Path, Fold(seg))
	}

	return n
}

// Fold joins the words of an identifier segment: "fan_out", "fanOut" and
// "FanOut" all fold to "fanout".
func Fold(s string) string {
	return strings.Join(Words(s), "")
}

// Words splits an identifier segment into lowercase words at underscores,
// hyphens, spaces and case changes. "on_event" and "onEvent" give
// [on event]; "HTTPServer" gives [http server].
func Words(s string) []string {
	runes := []rune(s)

	var words []string

	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, strings.ToLower(string(runes[start:end])))
		}

		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			flush(i)
			continue
		}

		if start >= 0 && wordStart(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return words
}

// wordStart reports whether an upper-case rune at i opens a new word: after
// a lower-case rune or digit, or as the last capital of an acronym followed
// by lower case.
func wordStart(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// Score rates how alike two names are, from 0 to 1. Leaves are compared by
// edit distance. When both names carry a path, a differing path scales the
// leaf score down to half; a bare name matches a qualified one on its leaf.
func Score(a, b Name) float64 {
	score := Similarity(a.Leaf, b.Leaf)

	if len(a.Path) == 0 || len(b.Path) == 0 {
		return score
	}

	path := Similarity(strings.Join(a.Path, "."), strings.Join(b.Path, "."))

	return score * (0.5 + path/2)
}
