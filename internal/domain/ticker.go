package domain

import (
	"sort"
	"strings"
)

// Ticker is an uppercase symbol, used as the identity key everywhere
type Ticker string

func NormalizeTicker(s string) Ticker {
	return Ticker(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseTickers splits a comma separated symbol list. empty entries are
// skipped and duplicates collapse onto their first occurrence
func ParseTickers(in string) []Ticker {
	seen := map[Ticker]bool{}
	out := []Ticker{}
	for _, part := range strings.Split(in, ",") {
		t := NormalizeTicker(part)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func SortedTickers(in []Ticker) []Ticker {
	seen := map[Ticker]bool{}
	out := make([]Ticker, 0, len(in))
	for _, t := range in {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}

func TickerStrings(in []Ticker) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
