// Package branch embeds source and target branch names into a free-text
// description and recovers them later, for platforms without native branch fields.
package branch

import (
	"regexp"
	"strings"
)

// Unknown is returned for a branch whose label line is absent or empty.
const Unknown = "unknown"

const (
	sourceLabel = "Source Branch: "
	targetLabel = "Target Branch: "
)

var (
	sourcePattern = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(sourceLabel) + `(.*)$`)
	targetPattern = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(targetLabel) + `(.*)$`)
)

// Embed appends one "Source Branch: <source>" line and one
// "Target Branch: <target>" line to description.
func Embed(description, source, target string) string {
	var b strings.Builder
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n\n")
	}
	b.WriteString(sourceLabel)
	b.WriteString(source)
	b.WriteString("\n")
	b.WriteString(targetLabel)
	b.WriteString(target)
	return b.String()
}

// Extract recovers the branches written by Embed. The last label line wins,
// so label lines quoted in the original description never shadow the
// embedded ones. Missing or empty label lines resolve to Unknown; it never
// fails.
func Extract(description string) (source, target string) {
	return find(sourcePattern, description), find(targetPattern, description)
}

func find(pattern *regexp.Regexp, description string) string {
	matches := pattern.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return Unknown
	}

	value := strings.TrimRight(matches[len(matches)-1][1], " \t\r")
	if value == "" {
		return Unknown
	}
	return value
}
