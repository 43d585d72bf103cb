package check

import "github.com/optimode/mailprobe/internal/levenshtein"

// PolicyConfig is the domain policy gate configuration.
type PolicyConfig struct {
	// AllowedDomains is the set of domains SMTP probing is permitted
	// for. Membership is exact and case-sensitive; no wildcard or
	// suffix matching.
	AllowedDomains []string
	// SuggestionThreshold is the maximum edit distance for suggesting
	// an allow-listed domain when one is rejected. Default: 2
	SuggestionThreshold int
}

// PolicyChecker restricts probing to the configured allow-list.
// Probing is expensive and abusable (mailbox enumeration), so only a
// known-safe set of providers gets past this gate.
type PolicyChecker struct {
	allowed   map[string]struct{}
	ordered   []string // insertion order, for deterministic suggestions
	threshold int
}

func NewPolicyChecker(cfg PolicyConfig) *PolicyChecker {
	if cfg.SuggestionThreshold <= 0 {
		cfg.SuggestionThreshold = 2
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedDomains))
	ordered := make([]string, 0, len(cfg.AllowedDomains))
	for _, d := range cfg.AllowedDomains {
		if _, dup := allowed[d]; dup {
			continue
		}
		allowed[d] = struct{}{}
		ordered = append(ordered, d)
	}
	return &PolicyChecker{
		allowed:   allowed,
		ordered:   ordered,
		threshold: cfg.SuggestionThreshold,
	}
}

// Allowed reports whether domain is in the allow-list.
func (c *PolicyChecker) Allowed(domain string) bool {
	_, ok := c.allowed[domain]
	return ok
}

// Suggest returns the closest allow-listed domain within the edit
// distance threshold, or "" if none is close enough. Diagnostics
// only; it never changes a verdict.
func (c *PolicyChecker) Suggest(domain string) string {
	bestDist := c.threshold + 1
	bestMatch := ""
	for _, candidate := range c.ordered {
		dist := levenshtein.Distance(domain, candidate)
		if dist < bestDist {
			bestDist = dist
			bestMatch = candidate
		}
	}
	return bestMatch
}
