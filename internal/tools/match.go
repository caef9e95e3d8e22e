package tools

import "strings"

// matchScore rates how well a free-form query names a catalog part.
// Exact tokens beat prefix hits beat substring hits, and query tokens
// absent from the name cost a point. Zero means no usable overlap.
// Ties go to the caller, which keeps the earlier catalog entry; base
// models are listed before their variants for that reason.
func matchScore(query, name string) int {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	nTokens := tokenize(name)
	score := 0
	for _, q := range qTokens {
		best := 0
		for _, n := range nTokens {
			switch {
			case q == n:
				best = 3
			case best < 2 && (strings.HasPrefix(n, q) || strings.HasPrefix(q, n)):
				best = 2
			case best < 1 && strings.Contains(n, q):
				best = 1
			}
			if best == 3 {
				break
			}
		}
		score += best
	}
	// Every query token missing from the name costs a point, so longer
	// wrong names do not beat shorter exact ones.
	for _, q := range qTokens {
		found := false
		for _, n := range nTokens {
			if strings.Contains(n, q) || strings.Contains(q, n) {
				found = true
				break
			}
		}
		if !found {
			score--
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '-', '_', '/', ',', '(', ')':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
