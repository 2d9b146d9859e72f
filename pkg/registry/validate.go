package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shuliakovsky/relay-admin/pkg/relayurl"
)

const rootShapeIssue = "root must be { relays: string[] }"

// Validate inspects a raw relays.json document without touching it and
// returns every problem found. A wrong root shape is reported alone.
func Validate(raw []byte) []string {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return []string{rootShapeIssue}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(root["relays"], &entries); err != nil || entries == nil {
		return []string{rootShapeIssue}
	}

	var issues []string
	seen := map[string]string{}
	for i, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err != nil || strings.TrimSpace(s) == "" {
			issues = append(issues, fmt.Sprintf("entry %d is not a non-empty string", i))
			continue
		}
		a, err := relayurl.Parse(strings.TrimSpace(s))
		if err != nil {
			issues = append(issues, fmt.Sprintf("entry %d invalid: %v", i, err))
			continue
		}
		if first, ok := seen[a.Key()]; ok {
			issues = append(issues, fmt.Sprintf("duplicate (normalized): %s (same as %s)", s, first))
			continue
		}
		seen[a.Key()] = s
	}
	return issues
}

