package dto

import "github.com/spec-kit/haf/internal/domain"

// TemplateBody is the API shape of a template.
type TemplateBody struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Answers       []string `json:"answers,omitempty"`
	Team          string   `json:"team,omitempty"`
	Application   string   `json:"application,omitempty"`
	ProcessType   string   `json:"process_type"`
	Flow          string   `json:"flow"`
	NeedsHostname bool     `json:"needs_hostname"`
	NeedsVariable bool     `json:"needs_variable"`
	Attachments   []string `json:"attachments,omitempty"`
}

// TemplateResponse pairs a template with its call type.
type TemplateResponse struct {
	CallType string `json:"call_type"`
	TemplateBody
}

// Template converts the payload to a domain template.
func (b TemplateBody) Template() domain.Template {
	return domain.Template{
		Title:         b.Title,
		Body:          b.Body,
		Answers:       b.Answers,
		Team:          b.Team,
		Application:   b.Application,
		ProcessType:   domain.ProcessType(b.ProcessType),
		Flow:          domain.FlowKind(b.Flow),
		NeedsHostname: b.NeedsHostname,
		NeedsVariable: b.NeedsVariable,
		Attachments:   b.Attachments,
	}
}

// NewTemplateResponse maps a template.
func NewTemplateResponse(callType string, t domain.Template) TemplateResponse {
	return TemplateResponse{
		CallType: callType,
		TemplateBody: TemplateBody{
			Title:         t.Title,
			Body:          t.Body,
			Answers:       t.Answers,
			Team:          t.Team,
			Application:   t.Application,
			ProcessType:   string(t.ProcessType),
			Flow:          string(t.Flow),
			NeedsHostname: t.NeedsHostname,
			NeedsVariable: t.NeedsVariable,
			Attachments:   t.Attachments,
		},
	}
}
