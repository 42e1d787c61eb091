package storage

import (
	"testing"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

func TestFingerprint(t *testing.T) {
	cases := []struct {
		name string
		lead followupboss.Lead
		want string
	}{
		{
			"email wins over phone",
			followupboss.Lead{Email: " Jane@Example.COM ", Phone: "305-555-1234"},
			"email:jane@example.com",
		},
		{
			"phone digits only",
			followupboss.Lead{Phone: "(305) 555-1234"},
			"phone:3055551234",
		},
		{
			"name fallback",
			followupboss.Lead{FirstName: "Jane", LastName: "Doe"},
			"name:jane doe",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fingerprint(tc.lead); got != tc.want {
				t.Fatalf("Fingerprint = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFingerprintStable(t *testing.T) {
	a := followupboss.Lead{Email: "jane@example.com", FirstName: "Jane"}
	b := followupboss.Lead{Email: "JANE@example.com", FirstName: "Janet"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("same email should fingerprint identically")
	}
}
