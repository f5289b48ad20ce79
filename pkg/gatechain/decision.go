package gatechain

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Decision is the outcome of a single gate check.
// A gate either allows the request to continue down the chain or rejects it
// with a terminal response. Exactly one Decision is produced per gate per request.
type Decision struct {
	// Allowed indicates whether the request may proceed to the next stage
	Allowed bool

	// Status is the HTTP status code written on rejection
	Status int

	// ContentType is the Content-Type of the rejection body
	ContentType string

	// Body is the rejection payload
	Body []byte

	// RetryAfter, when non-zero, is written as a Retry-After header (in seconds)
	RetryAfter time.Duration
}

// Allow returns a Decision that passes the request to the next stage.
func Allow() Decision {
	return Decision{Allowed: true}
}

// RejectText returns a plain-text rejection with the given status code.
func RejectText(status int, message string) Decision {
	return Decision{
		Status:      status,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(message),
	}
}

// RejectJSON returns a JSON rejection with the given status code.
// The payload is marshalled eagerly so the gate decision is self-contained.
func RejectJSON(status int, payload interface{}) Decision {
	body, err := json.Marshal(payload)
	if err != nil {
		// Marshalling a map of strings cannot realistically fail; fall back
		// to a generic body rather than panicking inside a gate.
		return RejectText(status, http.StatusText(status))
	}
	return Decision{
		Status:      status,
		ContentType: "application/json",
		Body:        body,
	}
}

// write sends the rejection to the client.
func (d Decision) write(w http.ResponseWriter) {
	if d.ContentType != "" {
		w.Header().Set("Content-Type", d.ContentType)
	}
	if d.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
	}
	w.WriteHeader(d.Status)
	w.Write(d.Body)
}
