package domain

import "strings"

// DefaultAllowedDomain is used when no domain suffixes are configured.
const DefaultAllowedDomain = "@bandq.jp"

// Caller is the authenticated operator making a request. It is built per
// request from the upstream session token and never persisted.
type Caller struct {
	ID             string
	VerifiedEmails []string
}

// PrimaryEmail returns the first verified email, or "" when there is none.
func (c *Caller) PrimaryEmail() string {
	if c == nil || len(c.VerifiedEmails) == 0 {
		return ""
	}
	return c.VerifiedEmails[0]
}

// Allowlist decides which callers may use the gateway. A non-empty Emails
// set takes exclusive precedence over DomainSuffixes.
type Allowlist struct {
	emails   map[string]struct{}
	suffixes []string
}

// NewAllowlist builds an immutable Allowlist. Blank entries are dropped;
// values are otherwise used verbatim (matching is case-sensitive).
func NewAllowlist(emails, domainSuffixes []string) Allowlist {
	a := Allowlist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	for _, s := range domainSuffixes {
		if s = strings.TrimSpace(s); s != "" {
			a.suffixes = append(a.suffixes, s)
		}
	}
	return a
}

// ExplicitMode reports whether the explicit email list is in effect.
func (a Allowlist) ExplicitMode() bool { return len(a.emails) > 0 }

// Authorizes reports whether any of the caller's verified emails is permitted.
func (a Allowlist) Authorizes(c *Caller) bool {
	if c == nil {
		return false
	}
	for _, email := range c.VerifiedEmails {
		if a.ExplicitMode() {
			if _, ok := a.emails[email]; ok {
				return true
			}
			continue
		}
		for _, suffix := range a.suffixes {
			if strings.HasSuffix(email, suffix) {
				return true
			}
		}
	}
	return false
}
