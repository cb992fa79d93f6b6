package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Meta carries optional listing metadata.
type Meta struct {
	Count int `json:"count,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Error is the standardized API error payload.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Envelope is the response wrapper for every tracker endpoint.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Meta  *Meta  `json:"meta,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with proper headers.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteOK writes a success response.
func WriteOK(w http.ResponseWriter, status int, data any, meta *Meta) {
	WriteJSON(w, status, Envelope{OK: true, Data: data, Meta: meta})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Envelope{OK: false, Error: &Error{Code: code, Message: message}})
}

// Decode unwraps an envelope and unmarshals its data payload into out.
// A not-OK envelope decodes into the returned *Error. out may be nil when
// the caller only cares about success.
func Decode(r io.Reader, out any) error {
	var env struct {
		OK    bool            `json:"ok"`
		Data  json.RawMessage `json:"data"`
		Error *Error          `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.OK {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("request failed without error detail")
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ParseError extracts the error payload from a non-2xx body, if the body is
// an envelope. ok is false for bodies in any other shape.
func ParseError(body []byte) (*Error, bool) {
	var env struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil || env.Error.Code == "" {
		return nil, false
	}
	return env.Error, true
}

const (
	ErrInvalidRequest = "invalid_request"
	ErrNotFound       = "not_found"
	ErrConflict       = "conflict"
	ErrInternal       = "internal_error"
)
