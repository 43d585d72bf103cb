package check

import "regexp"

// emailPattern is the fixed format rule: exactly one @, a local part
// of letters, digits and _.+-, and a domain with at least one dot.
// Deliberately simple: no case folding, no Unicode/IDNA handling.
// Callers needing internationalized domains must pre-normalize.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// SyntaxChecker validates the syntactic shape of an address. It is
// pure: no normalization, no network, no side effects.
type SyntaxChecker struct {
	pattern *regexp.Regexp
}

func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{pattern: emailPattern}
}

// Check reports whether email matches the format rule. Empty strings,
// multiple @ symbols, internal whitespace and disallowed characters
// all fail.
func (c *SyntaxChecker) Check(email string) bool {
	return c.pattern.MatchString(email)
}
