package display

import (
	"encoding/json"
)

// MarshalJSON marshals JSON with pretty formatting. Centralized so every
// command's --json output is shaped the same way.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
