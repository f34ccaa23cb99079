// Package kyc applies identity-document decision rules on top of a
// validated record: known id-number formats, blacklist reference rules,
// and a stubbed external verification check.
package kyc

import (
	"regexp"
	"strings"

	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// Decision is the KYC outcome for one document.
type Decision string

const (
	Verified      Decision = "verified"
	PendingReview Decision = "pending_review"
	Rejected      Decision = "failed"
)

// ReferenceRule is one row of externally sourced reference data. Only the
// blacklist column is interpreted today.
type ReferenceRule struct {
	BlacklistID string `json:"blacklist_id" yaml:"blacklist_id"`
}

// Outcome bundles the decision with the issues and check metadata behind it.
type Outcome struct {
	Decision Decision
	Issues   []string
	Meta     map[string]string
}

var (
	aadhaarRE = regexp.MustCompile(`^\d{12}$`)
	panRE     = regexp.MustCompile(`(?i)^[A-Z]{5}\d{4}[A-Z]$`)
	gstRE     = regexp.MustCompile(`(?i)^[0-9A-Z]{15}$`)
)

// Evaluate runs the rule checks. Blacklist hits alone reject; any other
// issue routes the document to pending review; no issues verifies it.
func Evaluate(rec schema.Record, rules []ReferenceRule) Outcome {
	var issues []string
	meta := map[string]string{}

	id, _ := rec.Get("id_number")
	id = strings.ReplaceAll(strings.TrimSpace(id), " ", "")

	if !aadhaarRE.MatchString(id) && !gstRE.MatchString(id) && !panRE.MatchString(id) {
		issues = append(issues, "id_number does not match Aadhaar(12d)/GST(15)/PAN(10) formats")
	}

	if len(rules) > 0 {
		blacklisted := make(map[string]struct{}, len(rules))
		for _, r := range rules {
			if v := strings.TrimSpace(r.BlacklistID); v != "" {
				blacklisted[v] = struct{}{}
			}
		}
		if _, hit := blacklisted[id]; hit {
			issues = append(issues, "id_number is blacklisted in reference data")
		}
	}

	ok, note := mockAPICheck(id)
	if !ok {
		issues = append(issues, "external verification failed: "+note)
	}
	meta["external_note"] = note

	return Outcome{Decision: decide(issues), Issues: issues, Meta: meta}
}

// decide: if every issue is a blacklist hit, the document is rejected
// outright; otherwise issues mean a human should look.
func decide(issues []string) Decision {
	if len(issues) == 0 {
		return Verified
	}
	for _, i := range issues {
		if !strings.Contains(i, "blacklisted") {
			return PendingReview
		}
	}
	return Rejected
}

// mockAPICheck stands in for an external verification provider.
func mockAPICheck(id string) (bool, string) {
	if strings.HasSuffix(id, "0000") {
		return false, "mock api: suspicious pattern"
	}
	return true, "mock api: ok"
}
