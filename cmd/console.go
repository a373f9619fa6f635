package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/console"
	"github.com/spec-kit/haf/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Log into the portal and start the HAF prompt",
	Args:  cobra.NoArgs,
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := a.runtime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	session, err := rt.launch(ctx, out)
	if err != nil {
		a.logger.Error("browser launch failed", zap.Error(err))
		return err
	}
	defer session.Close() //nolint:errcheck

	current, err := a.settings.Load()
	if err != nil {
		return err
	}

	c := console.New(console.Options{
		In:        cmd.InOrStdin(),
		Out:       out,
		Session:   session,
		Calls:     rt.callSvc,
		Templates: a.templates,
		Formatter: rt.ticketLog,
		Form: &tui.Form{
			Submitter: rt.callSvc,
			Session:   session,
			Templates: a.templates,
		},
		AutoOpen: current.AutoOpen,
		Logger:   a.logger,
	})
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

