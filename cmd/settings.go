package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the operator settings file",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings with the password masked",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsLanguageCmd = &cobra.Command{
	Use:   "language <" + strings.Join(settings.Languages, "|") + ">",
	Short: "Set the form language",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLanguage,
}

var settingsAutoOpenCmd = &cobra.Command{
	Use:   "auto-open <true|false>",
	Short: "Open the call form when the console starts",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsAutoOpen,
}

var settingsCredentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Store the Microsoft login used for the portal",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCredentials,
}

var settingsAPIPasswordCmd = &cobra.Command{
	Use:   "api-password",
	Short: "Set the password for the local API login (stored as a bcrypt hash)",
	Args:  cobra.NoArgs,
	RunE:  runSettingsAPIPassword,
}

var credentialsEmail string

func init() {
	settingsCredentialsCmd.Flags().StringVar(&credentialsEmail, "email", "", "Microsoft account email; kept when empty")
	settingsCmd.AddCommand(settingsShowCmd, settingsLanguageCmd, settingsAutoOpenCmd, settingsCredentialsCmd, settingsAPIPasswordCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	current, err := a.settings.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, row := range [][2]string{
		{"file", a.settings.Path()},
		{"email", current.Email},
		{"password", maskPassword(current.Password)},
		{"api-password", maskPassword(current.APIPasswordHash)},
		{"counter", strconv.Itoa(current.Counter)},
		{"language", current.Language},
		{"auto-open", strconv.FormatBool(current.AutoOpen)},
	} {
		fmt.Fprintf(out, "%-14s%s\n", row[0]+":", row[1])
	}
	return nil
}

func runSettingsLanguage(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.settings.UpdateLanguage(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unsupported language %q, expected one of %s", args[0], strings.Join(settings.Languages, ", "))
	}
	return nil
}

func runSettingsAutoOpen(cmd *cobra.Command, args []string) error {
	enabled, err := strconv.ParseBool(args[0])
	if err != nil {
		return fmt.Errorf("auto-open: %w", err)
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.settings.UpdateAutoOpen(enabled)
}

func runSettingsCredentials(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("credentials: password is required")
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.settings.UpdateCredentials(strings.TrimSpace(credentialsEmail), password)
}

func runSettingsAPIPassword(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := service.NewAuthService(a.cfg.Auth, a.settings).SetPassword(cmd.Context(), password); err != nil {
		return fmt.Errorf("api-password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "- API password saved.")
	return nil
}

// readPassword reads without echo from a terminal, or one line from any
// other reader.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func maskPassword(password string) string {
	if password == "" {
		return "(not set)"
	}
	return "********"
}
