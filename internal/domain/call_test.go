package domain

import (
	"errors"
	"testing"
)

func TestValidateCall(t *testing.T) {
	open := &Template{ProcessType: ProcessOpen, Flow: FlowMFA}
	withHost := &Template{ProcessType: ProcessOpen, Flow: FlowStandard, NeedsHostname: true, NeedsVariable: true}
	closing := &Template{ProcessType: ProcessClose, Flow: FlowMFA, Answers: []string{"a", "b"}}

	valid := CallRecord{UserID: "U123456789", Contact: "11987654321", CallType: "mfa"}

	tests := []struct {
		name   string
		call   CallRecord
		tmpl   *Template
		fields []string
	}{
		{"valid", valid, open, nil},
		{"accented user id", CallRecord{UserID: "JOÃO123456", Contact: "11987654321", CallType: "mfa"}, open, nil},
		{"eleven characters", CallRecord{UserID: "JOÃO1234567", Contact: "11987654321", CallType: "mfa"}, open, []string{"user_id"}},
		{"short user id", CallRecord{UserID: "U1", Contact: "11987654321", CallType: "mfa"}, open, []string{"user_id"}},
		{"contact letters", CallRecord{UserID: "U123456789", Contact: "11a87654321", CallType: "mfa"}, open, []string{"contact"}},
		{"contact bad length", CallRecord{UserID: "U123456789", Contact: "1234567", CallType: "mfa"}, open, []string{"contact"}},
		{"formatted contact", CallRecord{UserID: "U123456789", Contact: "(11) 9 8765 - 4321", CallType: "mfa"}, open, nil},
		{"unknown type", CallRecord{UserID: "U123456789", Contact: "123456", CallType: "nope"}, nil, []string{"call_type"}},
		{"missing type", CallRecord{UserID: "U123456789", Contact: "123456"}, nil, []string{"call_type"}},
		{"needs host and variable", valid, withHost, []string{"hostname", "variable"}},
		{"solution out of range", CallRecord{UserID: "U123456789", Contact: "123456", CallType: "x", Solution: 2}, closing, []string{"solution"}},
		{"solution negative", CallRecord{UserID: "U123456789", Contact: "123456", CallType: "x", Solution: -1}, closing, []string{"solution"}},
		{"solution last", CallRecord{UserID: "U123456789", Contact: "123456", CallType: "x", Solution: 1}, closing, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCall(tt.call, tt.tmpl)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidCall) {
				t.Fatalf("expected ErrInvalidCall, got %v", err)
			}
			var verr *CallValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *CallValidationError, got %T", err)
			}
			details := verr.Details()
			if len(details) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, details)
			}
			for _, f := range tt.fields {
				if _, ok := details[f]; !ok {
					t.Errorf("expected field %q to be rejected, got %v", f, details)
				}
			}
		})
	}
}

func TestFormatContact(t *testing.T) {
	tests := map[string]string{
		"101234":      "(10) 1234",
		"1012345678":  "(10) 1234 - 5678",
		"10912345678": "(10) 9 1234 - 5678",
		"12345":       "12345",
		"abc":         "abc",
	}
	for in, want := range tests {
		if got := FormatContact(in); got != want {
			t.Errorf("FormatContact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tmpl := Template{ProcessType: ProcessOpen, Flow: FlowMFA}
	call := CallRecord{UserID: "U123456789", Contact: "11987654321", Hostname: "HOST1", CallType: "mfa", Solution: 3, Variable: "x"}

	got := call.Normalize(tmpl)
	if got.Contact != "(11) 9 8765 - 4321" {
		t.Errorf("unexpected contact %q", got.Contact)
	}
	if got.Hostname != NotRequired || got.Variable != NotRequired {
		t.Errorf("expected unused fields to be marked, got %+v", got)
	}
	if got.Solution != 0 {
		t.Errorf("expected solution reset, got %d", got.Solution)
	}
	if again := got.Normalize(tmpl); again != got {
		t.Errorf("Normalize not idempotent: %+v != %+v", again, got)
	}
}
