package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VerificationEvent is the payload published when a user registers.
// It is parsed per invocation and never persisted.
type VerificationEvent struct {
	Email          string `json:"email" validate:"required,email"`
	UserID         UserID `json:"userId" validate:"required"`
	ActivationLink string `json:"activationLink" validate:"required,http_url,safe_link"`
}

// UserID is an opaque user identifier. Producers send it either as a JSON
// string or as a JSON integer; both decode to the same textual form.
// Fractions and exponents are rejected so "1e3" can never match id 1000.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("userId must be a string or a number: %w", err)
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("userId %s is not an integer", n.String())
	}
	*id = UserID(strconv.FormatInt(v, 10))
	return nil
}

func (id UserID) String() string { return string(id) }

// Status is the result reported back to the invoking platform.
type Status string

const StatusSuccess Status = "Success"
