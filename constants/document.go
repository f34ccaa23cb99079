package constants

import (
	"strings"
)

// DocumentType classifies the kind of identity or financial document a run
// is processing. The normalizer is asked to pick one of these labels.
type DocumentType string

const (
	Aadhaar       DocumentType = "Aadhaar"
	PAN           DocumentType = "PAN"
	Passport      DocumentType = "Passport"
	DriverLicense DocumentType = "DriverLicense"
	GST           DocumentType = "GST"
	Invoice       DocumentType = "Invoice"
	BankStatement DocumentType = "BankStatement"
	Other         DocumentType = "Other"
)

var allDocumentTypes = []DocumentType{
	Aadhaar,
	PAN,
	Passport,
	DriverLicense,
	GST,
	Invoice,
	BankStatement,
	Other,
}

func DocumentTypeLabels() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalizeDocumentType maps a free-text label from the normalizer onto
// the canonical enum. Returns (Other, false) when the label is unknown.
func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]DocumentType{
		"aadhar":           Aadhaar,
		"aadhaar card":     Aadhaar,
		"uidai":            Aadhaar,
		"pan card":         PAN,
		"driving license":  DriverLicense,
		"driving licence":  DriverLicense,
		"drivers license":  DriverLicense,
		"driver's license": DriverLicense,
		"gstin":            GST,
		"gst certificate":  GST,
		"bank statement":   BankStatement,
		"statement":        BankStatement,
		"bill":             Invoice,
		"receipt":          Invoice,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}

	return Other, false
}
