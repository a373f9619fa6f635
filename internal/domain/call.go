package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// UserIDLength is the length of an institutional user id.
const UserIDLength = 10

// ContactLengths lists the accepted contact lengths: branch line, land line
// and mobile number.
var ContactLengths = []int{6, 10, 11}

// ErrInvalidCall is returned when a call record fails presentation validation.
var ErrInvalidCall = errors.New("invalid call")

// CallRecord is the single pending call waiting to become a ticket.
type CallRecord struct {
	UserID   string
	Contact  string
	Hostname string
	CallType string
	Solution int
	Variable string
}

// BlankCall returns the canonical cleared record.
func BlankCall() CallRecord {
	return CallRecord{}
}

// IsBlank reports whether the record holds no pending call.
func (c CallRecord) IsBlank() bool {
	return c == BlankCall()
}

// FieldError names one rejected field of a call record.
type FieldError struct {
	Field  string
	Reason string
}

// CallValidationError lists every rejected field.
type CallValidationError struct {
	Fields []FieldError
}

func (e *CallValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidCall, strings.Join(parts, "; "))
}

func (e *CallValidationError) Unwrap() error {
	return ErrInvalidCall
}

// Has reports whether field was rejected.
func (e *CallValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Details returns the rejected fields keyed by field name.
func (e *CallValidationError) Details() map[string]any {
	out := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Reason
	}
	return out
}

// ValidUserID reports whether id has the institutional id shape.
func ValidUserID(id string) bool {
	return utf8.RuneCountInString(id) == UserIDLength && strings.TrimSpace(id) == id
}

// ValidContact reports whether contact is numeric with an accepted length.
func ValidContact(contact string) bool {
	if !isDigits(contact) {
		return false
	}
	for _, n := range ContactLengths {
		if len(contact) == n {
			return true
		}
	}
	return false
}

// ValidateCall checks a call record against its template before it is saved
// for processing. A nil template means the call type is unknown.
func ValidateCall(call CallRecord, tmpl *Template) error {
	var fields []FieldError
	if !ValidUserID(call.UserID) {
		fields = append(fields, FieldError{"user_id", fmt.Sprintf("must have %d characters", UserIDLength)})
	}
	if !ValidContact(digitsOnly(call.Contact)) {
		fields = append(fields, FieldError{"contact", "must be numeric with 6, 10 or 11 digits"})
	}
	if strings.TrimSpace(call.CallType) == "" {
		fields = append(fields, FieldError{"call_type", "required"})
	} else if tmpl == nil {
		fields = append(fields, FieldError{"call_type", "unknown call type"})
	}
	if tmpl != nil {
		if tmpl.NeedsHostname && strings.TrimSpace(call.Hostname) == "" {
			fields = append(fields, FieldError{"hostname", "required for this call type"})
		}
		if tmpl.NeedsVariable && strings.TrimSpace(call.Variable) == "" {
			fields = append(fields, FieldError{"variable", "required for this call type"})
		}
		if tmpl.ProcessType == ProcessClose && !tmpl.HasSolution(call.Solution) {
			fields = append(fields, FieldError{"solution", fmt.Sprintf("must be between 0 and %d", len(tmpl.Answers)-1)})
		}
	}
	if len(fields) > 0 {
		return &CallValidationError{Fields: fields}
	}
	return nil
}

// Normalize fills fields the template does not use with their placeholders
// and formats the contact number.
func (c CallRecord) Normalize(tmpl Template) CallRecord {
	out := c
	out.Contact = FormatContact(digitsOnly(c.Contact))
	if !tmpl.NeedsHostname {
		out.Hostname = NotRequired
	}
	if !tmpl.NeedsVariable {
		out.Variable = NotRequired
	}
	if tmpl.ProcessType != ProcessClose {
		out.Solution = 0
	}
	return out
}

// NotRequired is stored in fields the selected template does not use.
const NotRequired = "Not Required"

// FormatContact formats a numeric contact for display:
// (10) 1234, (10) 1234 - 5678 or (10) 9 1234 - 5678. Anything else is
// returned unchanged.
func FormatContact(contact string) string {
	if !ValidContact(contact) {
		return contact
	}
	switch len(contact) {
	case 6:
		return "(" + contact[:2] + ") " + contact[2:]
	case 10:
		return "(" + contact[:2] + ") " + contact[2:6] + " - " + contact[6:]
	default:
		return "(" + contact[:2] + ") " + contact[2:3] + " " + contact[3:7] + " - " + contact[7:]
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
