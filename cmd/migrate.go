package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/haf/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the ticket archive schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all archive migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List embedded migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateList,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateListCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	pg, err := persistence.NewPostgres(cmd.Context(), a.cfg.Postgres, a.logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()
	if !pg.Enabled() {
		return errors.New("migrate: POSTGRES_DSN is not set")
	}
	if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), a.logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info("archive migrations applied")
	fmt.Fprintln(cmd.OutOrStdout(), "migrate up: ok")
	return nil
}

func runMigrateList(cmd *cobra.Command, args []string) error {
	names, err := persistence.MigrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
