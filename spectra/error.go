package spectra

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/etnz/aurora"
)

const (
	msgNetwork = "network error or server unavailable"
	msgUnknown = "Unknown error occurred"
)

// Kind classifies an *Error.
type Kind int

const (
	KindUnknown        Kind = iota
	KindTransport           // no response received, Status is 0
	KindValidation          // 4xx other than 401, usually with a structured body
	KindAuthentication      // 401 that could not be recovered by a refresh
	KindServer              // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single failure shape returned by the Client.
type Error struct {
	Status  int             // HTTP status, 0 for transport failures
	Message string          // human readable message
	Body    json.RawMessage // raw JSON error body, nil if the body was not JSON
	Err     error           // underlying error, if any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("spectra: %s: %v", e.Message, e.Err)
	}
	if e.Status == 0 {
		return "spectra: " + e.Message
	}
	return fmt.Sprintf("spectra: %d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Kind returns the failure class.
func (e *Error) Kind() Kind {
	switch {
	case e.Status == 0:
		return KindTransport
	case e.Status == http.StatusUnauthorized:
		return KindAuthentication
	case e.Status >= 400 && e.Status < 500:
		return KindValidation
	case e.Status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Retryable reports failures worth a retry: transport and server ones.
func (e *Error) Retryable() bool {
	k := e.Kind()
	return k == KindTransport || k == KindServer
}

// FieldErrors extracts per-field messages from a validation body.
//
// It understands the list form {"detail": [{"loc": ["body", "ticker"], "msg": "..."}]}
// and the map form {"errors": {"ticker": "..."}}. It returns nil when the body
// carries no field information.
func (e *Error) FieldErrors() aurora.FieldErrors {
	if len(e.Body) == 0 {
		return nil
	}
	var payload struct {
		Detail json.RawMessage   `json:"detail"`
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return nil
	}
	fields := aurora.FieldErrors{}
	var details []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &details) == nil {
		for _, d := range details {
			if len(d.Loc) == 0 {
				continue
			}
			name := fmt.Sprint(d.Loc[len(d.Loc)-1])
			if _, exists := fields[name]; !exists {
				fields[name] = d.Msg
			}
		}
	}
	fields = fields.Merge(payload.Errors)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// newError builds the Error of a non-2xx response.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = msgUnknown
		if len(body) > 0 && json.Valid(body) {
			e.Body = json.RawMessage(body)
		}
		return e
	}
	e.Body = json.RawMessage(body)
	e.Message = messageOf(payload, status)
	return e
}

func messageOf(payload map[string]any, status int) string {
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// KindOf returns the Kind of err if it is an *Error, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return KindUnknown
	}
	return e.Kind()
}

// StatusOf returns the HTTP status of err if it is an *Error, -1 otherwise.
func StatusOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return -1
	}
	return e.Status
}

func IsUnauthorized(err error) bool { return KindOf(err) == KindAuthentication }
func IsTransport(err error) bool    { return KindOf(err) == KindTransport }
func IsNotFound(err error) bool     { return StatusOf(err) == http.StatusNotFound }
func IsConflict(err error) bool     { return StatusOf(err) == http.StatusConflict }
