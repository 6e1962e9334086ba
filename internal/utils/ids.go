package utils

import "strings"

// ParseIDList reads a comma-separated list of asset ids such as
// "bitcoin, Ethereum ,bitcoin". Ids are trimmed and lowercased, and the
// first occurrence wins. Returns nil when no id remains.
func ParseIDList(s string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		id := strings.ToLower(strings.TrimSpace(part))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
