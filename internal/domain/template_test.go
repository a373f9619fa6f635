package domain

import (
	"errors"
	"testing"
)

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"open mfa", Template{ProcessType: ProcessOpen, Flow: FlowMFA}, false},
		{"open standard", Template{ProcessType: ProcessOpen, Flow: FlowStandard, Application: "Outlook"}, false},
		{"close with answers", Template{ProcessType: ProcessClose, Flow: FlowMFA, Answers: []string{"done"}}, false},
		{"close without answers", Template{ProcessType: ProcessClose, Flow: FlowMFA}, true},
		{"escalate with team", Template{ProcessType: ProcessEscalate, Flow: FlowStandard, Team: "N2"}, false},
		{"escalate without team", Template{ProcessType: ProcessEscalate, Flow: FlowStandard}, true},
		{"unknown process", Template{ProcessType: "reopen", Flow: FlowMFA}, true},
		{"unknown flow", Template{ProcessType: ProcessOpen, Flow: "chat"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidTemplateDefinition) {
				t.Fatalf("expected ErrInvalidTemplateDefinition, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTemplateRender(t *testing.T) {
	tmpl := Template{
		Title:       "Reset for {Variable}",
		Body:        "User {User_ID} at {Hostname}, call back on {Contact}.",
		Answers:     []string{"Reset {Variable} done.", "Escalated"},
		ProcessType: ProcessClose,
		Flow:        FlowMFA,
	}
	call := CallRecord{UserID: "U123456789", Contact: "(11) 9 8765 - 4321", Hostname: "HOST1", Variable: "VPN", Solution: 0}

	got := tmpl.Render(call)
	if got.Title != "Reset for VPN" {
		t.Errorf("title: %q", got.Title)
	}
	if got.Body != "User U123456789 at HOST1, call back on (11) 9 8765 - 4321." {
		t.Errorf("body: %q", got.Body)
	}
	if got.Answer != "Reset VPN done." {
		t.Errorf("answer: %q", got.Answer)
	}

	call.Solution = 5
	if got := tmpl.Render(call); got.Answer != "" {
		t.Errorf("expected no answer for out-of-range solution, got %q", got.Answer)
	}
}
