package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396):
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Ptr returns the value when present and non-null
func (o OptionalString) Ptr() *string {
	if !o.Present {
		return nil
	}
	return o.Value
}

// OptionalPresence records only whether a field appeared in the JSON body,
// whatever its value. Used for fields that may never be sent.
type OptionalPresence bool

// UnmarshalJSON implements json.Unmarshaler.
func (p *OptionalPresence) UnmarshalJSON([]byte) error {
	*p = true
	return nil
}
