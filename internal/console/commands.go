package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/ticketlog"
	"github.com/spec-kit/haf/internal/workflow"
)

type subcommand struct {
	name        string
	description string
}

type command struct {
	name        string
	description string
	subcommands []subcommand
	usage       []string
	// run returns true when the loop must stop.
	run func(ctx context.Context, c *Console, args []string) bool
}

// commands in help order. Filled in init because help reads the table.
var commands []command

func init() {
	commands = []command{
		{
			name:        "gui",
			description: "Opens the call form.",
			usage:       []string{"gui"},
			run:         runGUI,
		},
		{
			name:        "call",
			description: "Registers call data as ticket.",
			subcommands: []subcommand{
				{"register", "register a ticket based on its dictionary type."},
				{"new", "asks for call information and saves it as the pending call."},
				{"show", "shows the pending call."},
			},
			usage: []string{"call [subcommand]"},
			run:   runCall,
		},
		{
			name:        "ticket",
			description: "This command is on development.",
			usage:       []string{"ticket [subcommand] [args]"},
			run: func(ctx context.Context, c *Console, args []string) bool {
				c.println(msgTicketStub)
				return false
			},
		},
		{
			name:        "details",
			description: "Gets details from the last log registered to file.",
			usage:       []string{"details"},
			run:         runDetails,
		},
		{
			name:        "help",
			description: "Provides information about available commands.",
			usage:       []string{"help", "help [command_name]"},
			run:         runHelp,
		},
		{
			name:        "exit",
			description: "Closes the browser and finishes the program.",
			usage:       []string{"exit"},
			run:         runExit,
		},
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// noArgs rejects any argument with the invalid subcommand message.
func noArgs(c *Console, args []string) bool {
	if len(args) > 1 {
		c.printf(msgInvalidSubcommand+"\n", args[1], args[0])
		return false
	}
	return true
}

func runCall(ctx context.Context, c *Console, args []string) bool {
	switch {
	case len(args) == 1:
		c.printf(msgTooFewArguments+"\n", args[0])
		return false
	case len(args) > 2:
		c.printf(msgTooManyArguments+"\n", args[0])
		return false
	}

	switch args[1] {
	case "register":
		c.register(ctx)
	case "new":
		c.newCall(ctx)
	case "show":
		c.showCall(ctx)
	default:
		c.printf(msgInvalidSubcommand+"\n", args[1], args[0])
	}
	return false
}

func runDetails(ctx context.Context, c *Console, args []string) bool {
	if !noArgs(c, args) {
		return false
	}
	entry, err := c.calls.LastEntry(ctx)
	if err != nil {
		c.report(err)
		return false
	}
	c.println(msgDetails)
	c.println(c.formatter.Format(entry))
	return false
}

func runHelp(ctx context.Context, c *Console, args []string) bool {
	switch {
	case len(args) == 1:
		c.printHelp()
	case len(args) > 2:
		c.printf(msgTooManyArguments+"\n", args[0])
	default:
		cmd, ok := lookup(args[1])
		if !ok {
			c.printf(msgInvalidSubcommand, args[1], args[0])
			c.printHelp()
			return false
		}
		c.printf(msgHelpArg+"\n", cmd.name, cmd.description, formatSubcommands(cmd.subcommands), formatUsage(cmd.usage))
	}
	return false
}

func runExit(ctx context.Context, c *Console, args []string) bool {
	if !noArgs(c, args) {
		return false
	}
	c.println(msgClosing)
	if err := c.session.Close(); err != nil {
		c.logger.Warn("close browser session", zap.Error(err))
	}
	return true
}

func runGUI(ctx context.Context, c *Console, args []string) bool {
	if !noArgs(c, args) {
		return false
	}
	if c.form == nil {
		c.printf(msgUnexpected+"\n", "call form not available")
		return false
	}
	c.println(msgRunningGUI)
	quit, err := c.form.Run(ctx)
	if err != nil {
		c.report(err)
		return false
	}
	if quit {
		c.println("\n" + prompt + "exit")
		return runExit(ctx, c, []string{"exit"})
	}
	c.println("")
	return false
}

func (c *Console) printHelp() {
	var b strings.Builder
	for _, cmd := range commands {
		fmt.Fprintf(&b, "\t- %s: %s\n", cmd.name, cmd.description)
	}
	c.printf(msgHelpNoArgs+"\n", strings.TrimSuffix(b.String(), "\n"))
}

func formatSubcommands(subs []subcommand) string {
	if len(subs) == 0 {
		return msgNoSubs
	}
	lines := make([]string, 0, len(subs))
	for _, s := range subs {
		lines = append(lines, "\t- "+s.name+": "+s.description)
	}
	return strings.Join(lines, "\n")
}

func formatUsage(usage []string) string {
	lines := make([]string, 0, len(usage))
	for _, u := range usage {
		lines = append(lines, "\t- "+prompt+u)
	}
	return strings.Join(lines, "\n")
}

func (c *Console) register(ctx context.Context) {
	entry, err := c.calls.Register(ctx, c.session)
	if err != nil {
		c.report(err)
		return
	}
	c.logger.Info("call registered", zap.String("ticket_id", entry.TicketID), zap.String("kind", string(entry.Kind)))
	c.println(msgDone)
}

func (c *Console) showCall(ctx context.Context) {
	call, err := c.calls.Pending(ctx)
	if err != nil {
		c.report(err)
		return
	}
	if call.IsBlank() {
		c.println(msgNoPending)
		return
	}
	c.printf("User ID: %s\nContact: %s\nHostname: %s\nCall Type: %s\nSolution: %d\nVariable: %s\n\n",
		call.UserID, call.Contact, call.Hostname, call.CallType, call.Solution, call.Variable)
}

// newCall prompts for each field the selected template uses.
func (c *Console) newCall(ctx context.Context) {
	var call domain.CallRecord
	var ok bool
	if call.UserID, ok = c.ask("User ID: "); !ok {
		return
	}
	if call.Contact, ok = c.ask("Contact: "); !ok {
		return
	}
	keys, err := c.templates.Keys(ctx)
	if err != nil {
		c.report(err)
		return
	}
	if call.CallType, ok = c.ask(fmt.Sprintf("Call Type (%s): ", strings.Join(keys, ", "))); !ok {
		return
	}

	tmpl, err := c.templates.Get(ctx, call.CallType)
	if err != nil {
		c.report(err)
		return
	}
	if tmpl.NeedsHostname {
		if call.Hostname, ok = c.ask("Hostname: "); !ok {
			return
		}
	}
	if tmpl.NeedsVariable {
		if call.Variable, ok = c.ask("Variable: "); !ok {
			return
		}
	}
	if tmpl.ProcessType == domain.ProcessClose {
		for i, answer := range tmpl.Answers {
			c.printf("\t%d - %s\n", i, answer)
		}
		raw, ok := c.ask("Solution: ")
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		call.Solution = n
	}

	if _, err := c.calls.Save(ctx, call); err != nil {
		c.report(err)
		return
	}
	c.println(msgCallSaved)
}

// report prints err the way the operator expects it. Nothing here ends the loop.
func (c *Console) report(err error) {
	var invalid *domain.CallValidationError
	switch {
	case errors.Is(err, workflow.ErrInvalidTemplate), errors.Is(err, repository.ErrTemplateNotFound):
		c.println(msgError01)
	case errors.Is(err, workflow.ErrInvalidSolutionIndex):
		c.println(msgError02)
	case errors.As(err, &invalid):
		if invalid.Has("call_type") {
			c.println(msgError01)
			return
		}
		if invalid.Has("solution") {
			c.println(msgError02)
		}
		c.println(msgInvalidCall)
		for _, f := range invalid.Fields {
			c.printf("\t- %s: %s\n", f.Field, f.Reason)
		}
		c.println("")
	case errors.Is(err, ticketlog.ErrNoPriorEntry):
		c.println(msgError03)
	case errors.Is(err, workflow.ErrRetriesExhausted):
		c.printf(msgError04+"\n", workflow.ErrRetriesExhausted)
	case errors.Is(err, service.ErrNoPendingCall):
		c.println(msgNoPending)
	case errors.Is(err, service.ErrBusy):
		c.println(msgBusy)
	default:
		c.logger.Error("console command failed", zap.Error(err))
		c.printf(msgUnexpected+"\n", err)
	}
}
