package mcpserver

import "encoding/json"

// encodeJSON renders v as compact JSON text for a tool's text content,
// falling back to a diagnostic string on the (unexpected) marshal failure
// rather than propagating it, since the tool call has already succeeded.
func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"success":false,"error":"failed to serialize output"}`
	}
	return string(b)
}
