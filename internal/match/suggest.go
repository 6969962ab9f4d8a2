package match

import "sort"

// DefaultMinScore is the minimum score for a suggestion.
const DefaultMinScore = 0.6

// Suggestion is a known name scored against the name being looked up.
type Suggestion struct {
	Name  string
	Score float64
}

// Rank scores every candidate against name and returns those scoring at
// least minScore, best first. Ties keep candidate order.
func Rank(name string, candidates []string, minScore float64) []Suggestion {
	want := Parse(name)

	var out []Suggestion

	for _, c := range candidates {
		if c == name {
			continue
		}

		if score := Score(want, Parse(c)); score >= minScore {
			out = append(out, Suggestion{Name: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// Suggest returns up to limit candidate names close to name, best first.
// A limit of zero or less means no limit.
func Suggest(name string, candidates []string, limit int) []string {
	ranked := Rank(name, candidates, DefaultMinScore)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.Name
	}

	return names
}
