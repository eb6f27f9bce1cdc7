package nl2sql

import (
	"regexp"
	"strings"
)

var sqlTagRe = regexp.MustCompile(`(?is)<sql_query>(.*?)</sql_query>`)

// ExtractSQL pulls the SQL statement out of a model response. Models are
// asked to wrap the query in <sql_query> tags, but some wrap it in markdown
// fences or return it bare; all three forms are handled. Returns "" when no
// statement can be found.
func ExtractSQL(content string) string {
	if m := sqlTagRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return stripMarkdownFence(content)
}

func stripMarkdownFence(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
