package storage

import (
	"strings"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

// Fingerprint derives the dedupe key for a lead. Email (lowercased) wins over
// phone (digits only), with the normalized name as a fallback so leads lacking
// both still get a stable, if weaker, key.
func Fingerprint(lead followupboss.Lead) string {
	if email := strings.ToLower(strings.TrimSpace(lead.Email)); email != "" {
		return "email:" + email
	}
	if phone := digitsOnly(lead.Phone); phone != "" {
		return "phone:" + phone
	}
	name := strings.ToLower(strings.TrimSpace(lead.FirstName) + " " + strings.TrimSpace(lead.LastName))
	return "name:" + strings.TrimSpace(name)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
