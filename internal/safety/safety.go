// Package safety screens candidate SQL before it is shown to the user or
// executed. It is a deliberately blunt instrument: a fixed denylist of
// statement keywords plus a few injection tripwires, not a SQL parser.
//
// Validate is a total function. It never panics and never returns an error;
// every input maps to an ALLOWED or BLOCKED verdict.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the outcome of validating one SQL statement.
type Verdict struct {
	Allowed bool
	Reason  string
}

var (
	// Denylisted statement keywords, matched as whole words only so that
	// identifiers like created_date or dropped_at never trip the gate.
	denyRe = regexp.MustCompile(`(?i)\b(DROP|TRUNCATE|DELETE|ALTER|CREATE)\b`)

	// A semicolon followed by anything other than trailing whitespace means
	// a second statement is stacked behind the first.
	stackedRe = regexp.MustCompile(`;\s*\S`)
)

// Validate screens a SQL statement and returns a verdict. Checks run in a
// fixed order: empty input, denylisted keywords, stacked statements, comment
// markers. UNION needs no rule of its own; a hostile UNION clause is only
// dangerous in combination with a denylisted keyword, which the keyword rule
// already catches.
func Validate(sql string) Verdict {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return blocked("empty statement")
	}

	if m := denyRe.FindString(trimmed); m != "" {
		kw := strings.ToUpper(m)
		return blocked(fmt.Sprintf("%s operations are not allowed for safety reasons", kw))
	}

	if stackedRe.MatchString(trimmed) {
		return blocked("stacked statements are not allowed")
	}

	if strings.Contains(trimmed, "--") || strings.Contains(trimmed, "/*") || strings.Contains(trimmed, "*/") {
		return blocked("comment markers are not allowed")
	}

	return Verdict{Allowed: true}
}

func blocked(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}
