package post

import "strings"

// NormalizeTags splits raw comma separated input, trims every token and
// drops empty ones. Order and duplicates are kept.
func NormalizeTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RawTagTokens splits raw input on commas and nothing else. Whitespace and
// empty tokens survive, which is what the structured-data export writes.
func RawTagTokens(raw string) []string {
	return strings.Split(raw, ",")
}
