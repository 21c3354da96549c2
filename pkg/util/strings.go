package util

import "strings"

// SplitSymbols parses a comma separated symbol list, trimming, upper-casing and
// dropping blanks and duplicates while keeping order.
func SplitSymbols(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = NormalizeSymbol(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
