package nl2sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "sql_query tags",
			content:  "<sql_query>\nSELECT * FROM customers\n</sql_query>",
			expected: "SELECT * FROM customers",
		},
		{
			name:     "tags with surrounding prose",
			content:  "Here is the query you asked for:\n<sql_query>SELECT name FROM customers WHERE country = 'USA'</sql_query>\nLet me know if you need changes.",
			expected: "SELECT name FROM customers WHERE country = 'USA'",
		},
		{
			name:     "uppercase tags",
			content:  "<SQL_QUERY>SELECT 1</SQL_QUERY>",
			expected: "SELECT 1",
		},
		{
			name:     "sql fence",
			content:  "```sql\nSELECT 1;\n```",
			expected: "SELECT 1;",
		},
		{
			name:     "bare fence",
			content:  "```\nSELECT 2\n```",
			expected: "SELECT 2",
		},
		{
			name:     "raw statement",
			content:  "  SELECT * FROM orders  ",
			expected: "SELECT * FROM orders",
		},
		{
			name:     "empty response",
			content:  "",
			expected: "",
		},
		{
			name:     "empty tags",
			content:  "<sql_query></sql_query>",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSQL(tt.content))
		})
	}
}
