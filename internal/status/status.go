// Package status translates each platform's native status vocabulary to the
// shared one and back, and holds the sentinels that classify records as
// review requests.
//
// Forward mappings are total: values with no table entry pass through
// unchanged. Reverse mappings are partial: the boolean result is false when
// the shared value has no platform equivalent and the filter must be dropped.
package status

import "strings"

// normalize lowercases and trims a shared vocabulary value supplied by a caller.
func normalize(shared string) string {
	return strings.ToLower(strings.TrimSpace(shared))
}

// lookup returns table[key], or key itself when the table has no entry.
func lookup(table map[string]string, key string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return key
}
