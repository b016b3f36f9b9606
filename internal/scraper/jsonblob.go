package scraper

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractAssignedObject returns the object literal assigned after marker,
// e.g. `window.__SSR_DATA__ = {...};`. The end is found by tracking brace
// depth, skipping braces inside string literals.
func ExtractAssignedObject(script, marker string) (string, bool) {
	at := strings.Index(script, marker)
	if at < 0 {
		return "", false
	}
	rest := script[at+len(marker):]
	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return "", false
	}
	start := at + len(marker) + open

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(script); i++ {
		c := script[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return script[start : i+1], true
			}
		}
	}
	return "", false
}

// DecodeAssignedObject extracts and parses the object assigned after marker.
func DecodeAssignedObject(script, marker string, out any) error {
	blob, ok := ExtractAssignedObject(script, marker)
	if !ok {
		return fmt.Errorf("no balanced object after %q", marker)
	}
	if err := json.Unmarshal([]byte(blob), out); err != nil {
		return fmt.Errorf("failed to parse embedded object: %w", err)
	}
	return nil
}
