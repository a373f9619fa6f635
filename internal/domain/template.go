package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ProcessType selects which portal procedure a template runs.
type ProcessType string

const (
	ProcessOpen     ProcessType = "open"
	ProcessClose    ProcessType = "close"
	ProcessEscalate ProcessType = "escalate"
)

// Valid reports whether p is a known process type.
func (p ProcessType) Valid() bool {
	switch p {
	case ProcessOpen, ProcessClose, ProcessEscalate:
		return true
	}
	return false
}

// FlowKind selects the keystroke script used inside the ticket creation menu.
// Its value is also the keyword typed into the portal search bar.
type FlowKind string

const (
	FlowStandard FlowKind = "ticket"
	FlowMFA      FlowKind = "mfa"
)

// Valid reports whether f is a known flow kind.
func (f FlowKind) Valid() bool {
	return f == FlowStandard || f == FlowMFA
}

// Placeholders understood by template text.
const (
	PlaceholderUserID   = "{User_ID}"
	PlaceholderContact  = "{Contact}"
	PlaceholderHostname = "{Hostname}"
	PlaceholderVariable = "{Variable}"
)

// ErrInvalidTemplateDefinition is returned when a template fails validation.
var ErrInvalidTemplateDefinition = errors.New("invalid template definition")

// Template describes how to fill and classify one kind of call.
type Template struct {
	Title         string      `json:"Title"`
	Body          string      `json:"Body"`
	Answers       []string    `json:"Answer,omitempty"`
	Team          string      `json:"Team,omitempty"`
	Application   string      `json:"Application,omitempty"`
	ProcessType   ProcessType `json:"Process-Type"`
	Flow          FlowKind    `json:"Type"`
	NeedsHostname bool        `json:"Needs_Hostname"`
	NeedsVariable bool        `json:"Needs_Variable"`
	Attachments   []string    `json:"Attachment,omitempty"`
}

// Validate checks the invariants a template must hold before it can be used.
func (t Template) Validate() error {
	if !t.ProcessType.Valid() {
		return fmt.Errorf("%w: unknown process type %q", ErrInvalidTemplateDefinition, t.ProcessType)
	}
	if !t.Flow.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTemplateDefinition, t.Flow)
	}
	switch t.ProcessType {
	case ProcessClose:
		if len(t.Answers) == 0 {
			return fmt.Errorf("%w: close template without answers", ErrInvalidTemplateDefinition)
		}
	case ProcessEscalate:
		if strings.TrimSpace(t.Team) == "" {
			return fmt.Errorf("%w: escalate template without team", ErrInvalidTemplateDefinition)
		}
	}
	return nil
}

// HasSolution reports whether index selects one of the template answers.
func (t Template) HasSolution(index int) bool {
	return index >= 0 && index < len(t.Answers)
}

// Rendered holds template text with placeholders substituted.
type Rendered struct {
	Title  string
	Body   string
	Answer string
}

// Render substitutes the call fields into the template text. Answer is only
// filled for close templates with a valid solution index.
func (t Template) Render(call CallRecord) Rendered {
	r := strings.NewReplacer(
		PlaceholderUserID, call.UserID,
		PlaceholderContact, call.Contact,
		PlaceholderHostname, call.Hostname,
		PlaceholderVariable, call.Variable,
	)
	out := Rendered{
		Title: r.Replace(t.Title),
		Body:  r.Replace(t.Body),
	}
	if t.ProcessType == ProcessClose && t.HasSolution(call.Solution) {
		out.Answer = r.Replace(t.Answers[call.Solution])
	}
	return out
}
