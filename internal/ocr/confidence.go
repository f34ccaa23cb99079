package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateLike = regexp.MustCompile(`\b\d{2,4}[-/]\d{2}[-/]\d{2,4}\b`)
	reIDLike   = regexp.MustCompile(`\b[A-Z0-9]{8,}\b|\b\d{4}\s?\d{4}\s?\d{4}\b`)
	reKeywords = regexp.MustCompile(`(?i)\b(name|birth|dob|address|government|license|passport|account)\b`)
)

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost if we see common identity-document artifacts
	// (date-ish strings, id-number-ish runs, field keywords).
	score := float32(0.2) // base
	if reDateLike.MatchString(txt) {
		score += 0.2
	}
	if reIDLike.MatchString(strings.ToUpper(txt)) {
		score += 0.15
	}
	if reKeywords.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
