package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CommandEnvelope is the request body sent to a Vornify endpoint.
// DatabaseName and CollectionName are only set for database commands.
type CommandEnvelope struct {
	DatabaseName   string                 `json:"database_name,omitempty"`
	CollectionName string                 `json:"collection_name,omitempty"`
	Command        string                 `json:"command,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// NewCommand creates an envelope without a target collection (payment style)
func NewCommand(command string, data map[string]interface{}) *CommandEnvelope {
	return &CommandEnvelope{
		Command: command,
		Data:    data,
	}
}

// NewDBCommand creates an envelope addressed to a database collection
func NewDBCommand(database, collection, command string, data map[string]interface{}) *CommandEnvelope {
	return &CommandEnvelope{
		DatabaseName:   database,
		CollectionName: collection,
		Command:        command,
		Data:           data,
	}
}

// HasTarget reports whether the envelope names a database collection
func (e *CommandEnvelope) HasTarget() bool {
	return e.DatabaseName != "" || e.CollectionName != ""
}

// Outcome is the normalized result flag of a response envelope.
type Outcome int

const (
	// OutcomeAbsent means the response carried neither "success" nor "status"
	OutcomeAbsent Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "absent"
	}
}

// ResponseEnvelope is a decoded Vornify response.
//
// The services spell the outcome flag either "success" or "status"; both are
// folded into Outcome. Data holds the "data" member when present, otherwise the
// remaining top-level members (the "status" style puts its payload there).
type ResponseEnvelope struct {
	Outcome Outcome
	// FlagName is the member the outcome was read from ("success" or "status")
	FlagName string
	Data     json.RawMessage
	Error    string
	Message  string
	Details  string
	// Fields holds every top-level member except the outcome flag
	Fields map[string]json.RawMessage
}

// knownFields are the envelope members that are not folded into Data
var knownFields = map[string]bool{
	"success": true,
	"status":  true,
	"data":    true,
	"error":   true,
	"message": true,
	"details": true,
}

// UnmarshalJSON implements custom JSON unmarshaling for ResponseEnvelope
func (r *ResponseEnvelope) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("response is not a JSON object")
	}

	*r = ResponseEnvelope{Fields: make(map[string]json.RawMessage, len(raw))}

	for _, name := range []string{"success", "status"} {
		v, ok := raw[name]
		if !ok {
			continue
		}
		var flag bool
		if err := json.Unmarshal(v, &flag); err != nil {
			// Non-boolean flags (e.g. numeric HTTP-style status) are not an outcome
			continue
		}
		r.FlagName = name
		if flag {
			r.Outcome = OutcomeSuccess
		} else {
			r.Outcome = OutcomeFailure
		}
		break
	}

	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if k != r.FlagName {
			r.Fields[k] = v
		}
		if !knownFields[k] {
			extra[k] = v
		}
	}

	r.Error = textField(raw["error"])
	r.Message = textField(raw["message"])
	r.Details = textField(raw["details"])

	if d, ok := raw["data"]; ok && !isNull(d) {
		r.Data = d
	} else if len(extra) > 0 {
		data, err := json.Marshal(extra)
		if err != nil {
			return err
		}
		r.Data = data
	}

	return nil
}

// MarshalJSON writes the envelope back with the flag spelled as it was received
func (r ResponseEnvelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	flag := r.FlagName
	if flag == "" {
		flag = "success"
	}
	out[flag] = r.Outcome == OutcomeSuccess
	return json.Marshal(out)
}

// OK returns true only when the service explicitly reported success
func (r *ResponseEnvelope) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// IsError returns true if the response is not an explicit success
func (r *ResponseEnvelope) IsError() bool {
	return !r.OK()
}

// GetError returns the best available failure message
func (r *ResponseEnvelope) GetError() string {
	if r.OK() {
		return ""
	}
	msg := r.Error
	if msg == "" {
		msg = r.Message
	}
	if msg == "" {
		if r.Outcome == OutcomeAbsent {
			return "response carried no success or status flag"
		}
		return "unknown error"
	}
	if r.Details != "" {
		return msg + ": " + r.Details
	}
	return msg
}

// DecodeData unmarshals the data payload into dest
func (r *ResponseEnvelope) DecodeData(dest interface{}) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(r.Data, dest); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// DataMap returns the data payload as a generic object, or nil when the
// payload is absent or not an object
func (r *ResponseEnvelope) DataMap() map[string]interface{} {
	var m map[string]interface{}
	if len(r.Data) == 0 || json.Unmarshal(r.Data, &m) != nil {
		return nil
	}
	return m
}

func textField(v json.RawMessage) string {
	if len(v) == 0 || isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
