package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// Email is the internal representation of a split email address.
// The check/ packages and the pipeline receive this as parameter.
type Email struct {
	Raw           string // the original, trimmed input
	Local         string // the part before the last @
	Domain        string // the part after @, ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode form (for display)
	Valid         bool   // false if Raw cannot be split
}

// NewEmail splits the given address into local and domain parts.
// If splitting fails, Valid=false but Raw is always populated.
//
// Case is preserved: the policy gate matches domains case-sensitively,
// so no folding happens here. Internationalized domains are converted
// to their Punycode form for DNS and SMTP use; callers wanting the
// strict ASCII format rule must run the syntax check first.
func NewEmail(raw string) Email {
	raw = strings.TrimSpace(raw)

	atIdx := strings.LastIndex(raw, "@")
	if atIdx < 1 || atIdx >= len(raw)-1 {
		return Email{Raw: raw, Valid: false}
	}
	local := raw[:atIdx]
	domain := raw[atIdx+1:]

	asciiDomain, unicodeDomain, ok := convertDomain(domain)
	if !ok {
		return Email{Raw: raw, Valid: false}
	}

	return Email{
		Raw:           raw,
		Local:         local,
		Domain:        asciiDomain,
		DomainUnicode: unicodeDomain,
		Valid:         true,
	}
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode
// forms. Returns (ascii, unicode, ok). ok is false if the domain
// contains non-ASCII characters that fail IDNA2008 validation.
// Pure-ASCII domains pass through unchanged, case intact.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(strings.ToLower(domain))
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Existing Punycode still gets a Unicode display form
	// (xn--mnchen-3ya.de → münchen.de).
	u, err := idna.Display.ToUnicode(strings.ToLower(domain))
	if err != nil || u == strings.ToLower(domain) {
		u = domain
	}
	return domain, u, true
}
