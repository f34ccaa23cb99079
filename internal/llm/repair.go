package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	reFenced   = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	reEmbedded = regexp.MustCompile(`\{[\s\S]*\}`)
)

// RepairJSON makes the one local repair attempt the contract allows: if the
// payload is not already a JSON object, strip a markdown fence or pull the
// first embedded {...} block and retry. Anything beyond that is a
// malformed-response failure for the caller to surface.
func RepairJSON(raw []byte) (map[string]any, error) {
	text := strings.TrimSpace(string(raw))

	if m := tryDecode(text); m != nil {
		return m, nil
	}

	if g := reFenced.FindStringSubmatch(text); g != nil {
		if m := tryDecode(strings.TrimSpace(g[1])); m != nil {
			return m, nil
		}
	}
	if g := reEmbedded.FindString(text); g != "" {
		if m := tryDecode(g); m != nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no JSON object in response (%d bytes)", len(raw))
}

func tryDecode(text string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil
	}
	return m
}
