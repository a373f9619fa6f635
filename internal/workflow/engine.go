// Package workflow turns a pending call into a ticket by driving the portal
// through the open, close or escalate procedure its template selects.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/observability"
	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/repository"
)

// DefaultMaxAttempts bounds the runs of the open procedure per call.
const DefaultMaxAttempts = 3

// TemplateSource looks up the template of a call type.
type TemplateSource interface {
	Get(ctx context.Context, callType string) (domain.Template, error)
}

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	MaxAttempts int
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// Engine runs the ticket procedures against a portal session. It holds no
// per-run state; callers must not run two procedures on one session at once.
type Engine struct {
	templates   TemplateSource
	profile     portal.Profile
	maxAttempts int
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewEngine builds an engine over templates and profile.
func NewEngine(templates TemplateSource, profile portal.Profile, opts Options) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		templates:   templates,
		profile:     profile,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		now:         time.Now,
	}
}

// Process converts call into a ticket. Template and solution errors are
// reported before the session is touched.
func (e *Engine) Process(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error) {
	tmpl, err := e.templates.Get(ctx, call.CallType)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return domain.LogEntry{}, fmt.Errorf("%w: %q", ErrInvalidTemplate, call.CallType)
		}
		return domain.LogEntry{}, err
	}
	return e.Run(ctx, session, call, tmpl)
}

// Run executes the procedure tmpl selects for call.
func (e *Engine) Run(ctx context.Context, session portal.Session, call domain.CallRecord, tmpl domain.Template) (domain.LogEntry, error) {
	if err := tmpl.Validate(); err != nil {
		return domain.LogEntry{}, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if tmpl.ProcessType == domain.ProcessClose && !tmpl.HasSolution(call.Solution) {
		return domain.LogEntry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSolutionIndex, call.Solution, len(tmpl.Answers))
	}

	start := e.now()
	logger := e.logger.With(
		zap.String("call_type", call.CallType),
		zap.String("process", string(tmpl.ProcessType)),
	)
	logger.Info("ticket run started")

	text := tmpl.Render(call)
	var ticketID string
	var err error
	switch tmpl.ProcessType {
	case domain.ProcessOpen:
		ticketID, err = e.open(ctx, session, call, tmpl, text)
	case domain.ProcessClose:
		ticketID, err = e.close(ctx, session, call, tmpl, text)
	case domain.ProcessEscalate:
		ticketID, err = e.escalate(ctx, session, call, tmpl, text)
	}
	elapsed := e.now().Sub(start)
	if err != nil {
		logger.Error("ticket run failed", zap.String("ticket_id", ticketID), zap.Duration("elapsed", elapsed), zap.Error(err))
		e.metrics.RecordRun("failed", elapsed)
		return domain.LogEntry{}, err
	}

	kind := domain.KindFor(tmpl.ProcessType)
	e.metrics.RecordRun(string(kind), elapsed)
	logger.Info("ticket run finished", zap.String("ticket_id", ticketID), zap.String("kind", string(kind)), zap.Duration("elapsed", elapsed))

	return domain.LogEntry{
		ID:              uuid.NewString(),
		Kind:            kind,
		TicketID:        ticketID,
		Timestamp:       e.now(),
		Call:            call,
		Team:            tmpl.Team,
		Attachments:     append([]string(nil), tmpl.Attachments...),
		HostnameApplies: tmpl.NeedsHostname,
	}, nil
}

// open runs the creation procedure until the portal hands back a numeric
// ticket id, at most maxAttempts times. Session errors are not retried.
func (e *Engine) open(ctx context.Context, session portal.Session, call domain.CallRecord, tmpl domain.Template, text domain.Rendered) (string, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		e.metrics.RecordOpenAttempt()
		id, err := e.openOnce(ctx, session, call, tmpl, text)
		if err != nil {
			return "", fmt.Errorf("open ticket: %w", err)
		}
		if isNumeric(id) {
			return id, nil
		}
		e.logger.Warn("ticket id not numeric",
			zap.String("ticket_id", id),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
		)
	}
	return "", fmt.Errorf("open ticket: %w", ErrRetriesExhausted)
}

func (e *Engine) openOnce(ctx context.Context, session portal.Session, call domain.CallRecord, tmpl domain.Template, text domain.Rendered) (string, error) {
	sel := e.profile.Selectors
	s := newScript(ctx, session)

	s.reload()
	s.navigate(e.profile.URLs.SmartRecorder)
	s.sendKeys(sel.RecorderInput, "@"+call.UserID)
	s.pause(e.profile.Delays.UserLoad)
	s.sendKeys(sel.RecorderInput, portal.Enter+string(tmpl.Flow))
	s.click(sel.CatalogItem)
	s.click(sel.CreateButton)
	e.navigateMenu(s, call, tmpl, text)
	s.pause(e.profile.Delays.TicketPage)
	url := s.currentURL()
	if s.err != nil {
		return "", s.err
	}
	return e.profile.URLs.TicketID(url), nil
}

// navigateMenu fills the ticket creation menu with keystrokes. Its fields
// cannot be addressed by selector, so every step is paced by a delay.
func (e *Engine) navigateMenu(s *script, call domain.CallRecord, tmpl domain.Template, text domain.Rendered) {
	step := e.profile.Delays.Animation

	s.focus()
	s.pause(e.profile.Delays.TicketMenu)
	s.typeKeys(portal.Tab + text.Body)

	if tmpl.Flow == domain.FlowStandard {
		// How is this affecting you?
		s.typeKeys(portal.Tab + portal.Space)
		s.pause(step)
		s.typeKeys(strings.Repeat(portal.Tab, 4) + portal.Space)
		s.pause(step)
		// Degree of impact.
		s.typeKeys(portal.Tab + portal.Space)
		s.pause(step)
		s.typeKeys(portal.Tab + portal.Space)
		s.pause(step)
		s.typeKeys(portal.Tab + tmpl.Application)
		s.pause(step)
		s.typeKeys(strings.Repeat(portal.Tab, 3) + call.Contact)
		s.pause(step)
	}

	s.typeKeys(portal.Tab + portal.Tab)
	s.pause(step)
	s.typeKeys(portal.Tab + portal.Tab + portal.Space)
}

func (e *Engine) close(ctx context.Context, session portal.Session, call domain.CallRecord, tmpl domain.Template, text domain.Rendered) (string, error) {
	id, err := e.open(ctx, session, call, tmpl, text)
	if err != nil {
		return "", err
	}

	sel := e.profile.Selectors
	delays := e.profile.Delays
	s := newScript(ctx, session)

	e.openEditor(s, id)
	s.replace(sel.TitleInput, text.Title)
	s.click(sel.StatusButton)
	s.click(sel.StatusOngoing)
	e.classify(s)

	// Take ownership, then the editor has to be reopened on a fresh page.
	s.click(sel.AssignToMe)
	s.pause(delays.Designation)
	s.click(sel.SaveButton)
	s.pause(delays.Editor)
	s.reload()
	s.click(sel.EditorReopen)
	s.pause(delays.Editor)

	s.click(sel.StatusButton)
	s.click(sel.StatusConcluded)
	s.click(sel.StatusReasonButton)
	s.click(sel.StatusReasonSolved)
	s.sendKeys(sel.SolutionTextarea, text.Answer)
	s.click(sel.SaveButton)
	if s.err != nil {
		return id, fmt.Errorf("close ticket %s: %w", id, s.err)
	}
	return id, nil
}

func (e *Engine) escalate(ctx context.Context, session portal.Session, call domain.CallRecord, tmpl domain.Template, text domain.Rendered) (string, error) {
	id, err := e.open(ctx, session, call, tmpl, text)
	if err != nil {
		return "", err
	}

	sel := e.profile.Selectors
	delays := e.profile.Delays
	s := newScript(ctx, session)

	e.openEditor(s, id)
	s.replace(sel.TitleInput, text.Title)
	e.classify(s)

	s.click(sel.DesignationOpen)
	s.focus()
	s.pause(delays.DesignationMenu)
	s.click(sel.SearchScopeButton)
	s.click(sel.SearchScopeAll)
	s.click(sel.TeamButton)
	s.sendKeys(sel.TeamFilter, tmpl.Team)
	s.pause(delays.TeamLoad)
	s.sendKeys(sel.TeamFilter, portal.Enter)
	s.pause(delays.Animation)
	s.click(sel.TeamAssign)
	s.click(sel.TeamConfirm)
	s.click(sel.SaveButton)
	if s.err != nil {
		return id, fmt.Errorf("escalate ticket %s: %w", id, s.err)
	}
	return id, nil
}

func (e *Engine) openEditor(s *script, id string) {
	s.navigate(e.profile.URLs.TicketURL(id))
	for _, selector := range e.profile.Selectors.EditorOpen {
		s.click(selector)
	}
	s.pause(e.profile.Delays.Editor)
}

func (e *Engine) classify(s *script) {
	for _, d := range e.profile.Selectors.Classification {
		s.click(d.Button)
		s.click(d.Option)
	}
}

func isNumeric(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
