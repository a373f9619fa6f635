// Package console implements the HAF> prompt.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/portal"
)

// Calls is the call service as seen by the prompt.
type Calls interface {
	Pending(ctx context.Context) (domain.CallRecord, error)
	Save(ctx context.Context, call domain.CallRecord) (domain.CallRecord, error)
	Register(ctx context.Context, session portal.Session) (domain.LogEntry, error)
	LastEntry(ctx context.Context) (domain.LogEntry, error)
}

// Templates lists and resolves call types.
type Templates interface {
	Get(ctx context.Context, callType string) (domain.Template, error)
	Keys(ctx context.Context) ([]string, error)
}

// EntryFormatter renders a log entry as text.
type EntryFormatter interface {
	Format(entry domain.LogEntry) string
}

// Form is the interactive call form. Run reports whether the operator asked
// to leave HAF from inside the form.
type Form interface {
	Run(ctx context.Context) (quit bool, err error)
}

// Options wires a Console.
type Options struct {
	In        io.Reader
	Out       io.Writer
	Session   portal.Session
	Calls     Calls
	Templates Templates
	Formatter EntryFormatter
	Form      Form
	// AutoOpen runs the form before the first prompt.
	AutoOpen bool
	Logger   *zap.Logger
}

// Console reads commands until exit or end of input.
type Console struct {
	in        *bufio.Scanner
	out       io.Writer
	session   portal.Session
	calls     Calls
	templates Templates
	formatter EntryFormatter
	form      Form
	autoOpen  bool
	logger    *zap.Logger
}

// New builds a console.
func New(opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:        bufio.NewScanner(opts.In),
		out:       opts.Out,
		session:   opts.Session,
		calls:     opts.Calls,
		templates: opts.Templates,
		formatter: opts.Formatter,
		form:      opts.Form,
		autoOpen:  opts.AutoOpen,
		logger:    logger,
	}
}

// Run loops until exit, end of input or ctx cancellation. End of input
// behaves like exit.
func (c *Console) Run(ctx context.Context) error {
	c.println(msgWelcome)
	if c.autoOpen && c.form != nil {
		if runGUI(ctx, c, []string{"gui"}) {
			return nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.printf("%s", prompt)
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			c.println("")
			runExit(ctx, c, []string{"exit"})
			return nil
		}
		if c.Execute(ctx, c.in.Text()) {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the loop must stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	cmd, ok := lookup(args[0])
	if !ok {
		c.printf(msgInvalidCommand+"\n", args[0])
		return false
	}
	return cmd.run(ctx, c, args)
}

// ask prompts for one line. It returns false at end of input.
func (c *Console) ask(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		c.println("")
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
