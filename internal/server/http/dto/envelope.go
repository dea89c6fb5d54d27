package dto

import "encoding/json"

// Envelope is the uniform response wrapper for JSON endpoints.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
