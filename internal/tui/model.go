// Package tui is the terminal call form: operators fill a call, preview the
// rendered ticket text and submit it without leaving the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/portal"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

// Submitter validates, saves and processes a call.
type Submitter interface {
	Submit(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error)
}

type field int

const (
	fieldUserID field = iota
	fieldContact
	fieldCallType
	fieldHostname
	fieldVariable
	fieldSolution
	fieldSubmit
	fieldCount
)

const defaultWidth = 80

// submitDoneMsg carries the result of a background submission.
type submitDoneMsg struct {
	entry domain.LogEntry
	err   error
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(12)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	previewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the call form state.
type Model struct {
	ctx       context.Context
	submitter Submitter
	session   portal.Session
	templates map[string]domain.Template
	callTypes []string
	keys      KeyMap

	userID   textinput.Model
	contact  textinput.Model
	hostname textinput.Model
	variable textinput.Model

	typeIndex  int
	solution   int
	focus      field
	submitting bool
	status     string
	statusErr  bool
	quit       bool
	width      int
}

// NewModel builds a form over templates; callTypes fixes the selector order.
func NewModel(ctx context.Context, submitter Submitter, session portal.Session, templates map[string]domain.Template, callTypes []string) Model {
	newInput := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholder
		in.CharLimit = limit
		return in
	}
	m := Model{
		ctx:       ctx,
		submitter: submitter,
		session:   session,
		templates: templates,
		callTypes: callTypes,
		keys:      DefaultKeyMap,
		userID:    newInput("10 characters", domain.UserIDLength),
		contact:   newInput("6, 10 or 11 digits", 20),
		hostname:  newInput("machine name", 64),
		variable:  newInput("template variable", 128),
		width:     defaultWidth,
	}
	m.userID.Focus()
	return m
}

// Quit reports whether the operator asked to leave HAF.
func (m Model) Quit() bool {
	return m.quit
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) template() (domain.Template, bool) {
	if len(m.callTypes) == 0 {
		return domain.Template{}, false
	}
	t, ok := m.templates[m.callTypes[m.typeIndex]]
	return t, ok
}

// Call returns the record the form currently describes.
func (m Model) Call() domain.CallRecord {
	call := domain.CallRecord{
		UserID:   strings.TrimSpace(m.userID.Value()),
		Contact:  strings.TrimSpace(m.contact.Value()),
		Hostname: strings.TrimSpace(m.hostname.Value()),
		Variable: strings.TrimSpace(m.variable.Value()),
	}
	if len(m.callTypes) > 0 {
		call.CallType = m.callTypes[m.typeIndex]
	}
	if t, ok := m.template(); ok && t.ProcessType == domain.ProcessClose {
		call.Solution = m.solution
	}
	return call
}

func (m Model) validate() error {
	t, ok := m.template()
	if !ok {
		return domain.ValidateCall(m.Call(), nil)
	}
	return domain.ValidateCall(m.Call(), &t)
}

// applies reports whether f is shown for the selected template.
func (m Model) applies(f field) bool {
	t, _ := m.template()
	switch f {
	case fieldHostname:
		return t.NeedsHostname
	case fieldVariable:
		return t.NeedsVariable
	case fieldSolution:
		return t.ProcessType == domain.ProcessClose
	}
	return true
}

func (m *Model) input(f field) *textinput.Model {
	switch f {
	case fieldUserID:
		return &m.userID
	case fieldContact:
		return &m.contact
	case fieldHostname:
		return &m.hostname
	case fieldVariable:
		return &m.variable
	}
	return nil
}

func (m *Model) move(step int) tea.Cmd {
	if in := m.input(m.focus); in != nil {
		in.Blur()
	}
	next := m.focus
	for {
		next = (next + field(step) + fieldCount) % fieldCount
		if m.applies(next) {
			break
		}
	}
	m.focus = next
	if in := m.input(m.focus); in != nil {
		return in.Focus()
	}
	return nil
}

func (m *Model) cycle(step int) {
	switch m.focus {
	case fieldCallType:
		if n := len(m.callTypes); n > 0 {
			m.typeIndex = (m.typeIndex + step + n) % n
			m.solution = 0
		}
	case fieldSolution:
		t, _ := m.template()
		if n := len(t.Answers); n > 0 {
			m.solution = (m.solution + step + n) % n
		}
	}
}

func (m *Model) submit() tea.Cmd {
	if err := m.validate(); err != nil {
		m.status, m.statusErr = describe(err), true
		return nil
	}
	m.submitting = true
	m.status, m.statusErr = "Processing call, the form is locked until the portal answers.", false

	ctx, submitter, session, call := m.ctx, m.submitter, m.session, m.Call()
	return func() tea.Msg {
		entry, err := submitter.Submit(ctx, session, call)
		return submitDoneMsg{entry: entry, err: err}
	}
}

func (m *Model) reset() {
	for _, in := range []*textinput.Model{&m.userID, &m.contact, &m.hostname, &m.variable} {
		in.Reset()
		in.Blur()
	}
	m.solution = 0
	m.focus = fieldUserID
	m.userID.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.status, m.statusErr = describe(msg.err), true
			return m, nil
		}
		m.status = fmt.Sprintf("Done. %s ticket %s.", msg.entry.Kind.Label(), msg.entry.TicketID)
		m.statusErr = false
		m.reset()
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		case msg.Type == tea.KeyEnter && m.focus == fieldSubmit:
			return m, m.submit()
		case key.Matches(msg, m.keys.Next):
			return m, m.move(1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.move(-1)
		case m.focus == fieldCallType || m.focus == fieldSolution:
			if key.Matches(msg, m.keys.Left) {
				m.cycle(-1)
			} else if key.Matches(msg, m.keys.Right) {
				m.cycle(1)
			}
			return m, nil
		}
	}

	if in := m.input(m.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("HAF call form"))
	b.WriteString("\n\n")

	row := func(f field, label, value string) {
		if !m.applies(f) {
			return
		}
		marker := "  "
		l := labelStyle.Render(label)
		if m.focus == f {
			marker = focusStyle.Render("> ")
			l = focusStyle.Inherit(labelStyle).Render(label)
		}
		b.WriteString(marker + l + value + "\n")
	}

	t, _ := m.template()
	callType := mutedStyle.Render("no templates")
	if len(m.callTypes) > 0 {
		callType = "‹ " + m.callTypes[m.typeIndex] + " ›"
	}
	solution := ""
	if m.applies(fieldSolution) && m.solution < len(t.Answers) {
		solution = fmt.Sprintf("‹ %d: %s ›", m.solution, t.Answers[m.solution])
	}

	row(fieldUserID, "User ID", m.userID.View())
	row(fieldContact, "Contact", m.contact.View())
	row(fieldCallType, "Call type", callType)
	row(fieldHostname, "Hostname", m.hostname.View())
	row(fieldVariable, "Variable", m.variable.View())
	row(fieldSolution, "Solution", solution)
	row(fieldSubmit, "", "[ Submit ]")

	b.WriteString("\n")
	b.WriteString(m.preview(t))
	b.WriteString("\n")

	switch {
	case m.status == "":
	case m.statusErr:
		b.WriteString(errorStyle.Render(m.status) + "\n")
	default:
		b.WriteString(successStyle.Render(m.status) + "\n")
	}
	b.WriteString(mutedStyle.Render(m.help()))
	return b.String()
}

func (m Model) preview(t domain.Template) string {
	if len(m.callTypes) == 0 {
		return ""
	}
	call := m.Call().Normalize(t)
	text := t.Render(call)

	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	lines := []string{"Title: " + text.Title}
	lines = append(lines, strings.Split(text.Body, "\n")...)
	if t.ProcessType == domain.ProcessClose {
		lines = append(lines, "", "Answer: "+text.Answer)
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}
	return previewStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) help() string {
	bindings := []key.Binding{m.keys.Next, m.keys.Prev, m.keys.Left, m.keys.Submit, m.keys.Back, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// describe renders err with the operator code the console uses.
func describe(err error) string {
	var invalid *domain.CallValidationError
	if errors.As(err, &invalid) {
		parts := make([]string, 0, len(invalid.Fields))
		for _, f := range invalid.Fields {
			parts = append(parts, f.Field+" "+f.Reason)
		}
		return "Invalid call: " + strings.Join(parts, "; ")
	}
	de := apperrors.ToDomainError(err)
	if de.HTTPStatus >= 500 && !strings.HasPrefix(de.Code, "ERROR_") {
		return "ERROR: " + err.Error()
	}
	return fmt.Sprintf("%s: %s", strings.ReplaceAll(de.Code, "_", " "), de.Message)
}
