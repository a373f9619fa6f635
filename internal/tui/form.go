package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/portal"
)

// TemplateSource lists the call types offered by the form.
type TemplateSource interface {
	Load(ctx context.Context) (map[string]domain.Template, error)
	Keys(ctx context.Context) ([]string, error)
}

// Form runs the call form as a full-screen program.
type Form struct {
	Submitter Submitter
	Session   portal.Session
	Templates TemplateSource
	In        io.Reader
	Out       io.Writer
}

// Run shows the form until the operator leaves it. It reports whether the
// operator asked to exit HAF.
func (f *Form) Run(ctx context.Context) (bool, error) {
	templates, err := f.Templates.Load(ctx)
	if err != nil {
		return false, err
	}
	keys, err := f.Templates.Keys(ctx)
	if err != nil {
		return false, err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if f.In != nil {
		opts = append(opts, tea.WithInput(f.In))
	}
	if f.Out != nil {
		opts = append(opts, tea.WithOutput(f.Out))
	}
	program := tea.NewProgram(NewModel(ctx, f.Submitter, f.Session, templates, keys), opts...)
	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("call form: %w", err)
	}
	model, ok := final.(Model)
	return ok && model.Quit(), nil
}
