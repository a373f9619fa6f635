package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spec-kit/haf/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "haf",
	Short:        "Help-desk automation for the Smart IT portal",
	Long:         "HAF drives the Smart IT portal through Chrome to open, close and escalate calls.\nWithout a subcommand it starts the interactive console.",
	SilenceUsage: true,
	RunE:         runConsole,
}

type globalOptions struct {
	envFile  string
	dataDir  string
	headless bool
}

var globals globalOptions

func globalFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("haf", pflag.ContinueOnError)
	flags.StringVar(&globals.envFile, "env-file", "", "load environment variables from this file before .env")
	flags.StringVar(&globals.dataDir, "data-dir", "", "directory holding dictionary, call, log and settings files (HAF_DATA_DIR)")
	flags.BoolVar(&globals.headless, "headless", false, "run Chrome without a window (BROWSER_HEADLESS)")
	return flags
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(globalFlagSet())
}

// loadConfig applies the global flags on top of the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if globals.envFile != "" {
		if err := godotenv.Load(globals.envFile); err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
	}
	if globals.dataDir != "" {
		if err := os.Setenv("HAF_DATA_DIR", globals.dataDir); err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = globals.headless
	}
	return cfg, nil
}
