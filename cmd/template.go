package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/repository"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Inspect and edit the template dictionary",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List call types in dictionary order",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <call-type>",
	Short: "Print one template as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templateSortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Rewrite the dictionary with call types in case-insensitive order",
	Args:  cobra.NoArgs,
	RunE:  runTemplateSort,
}

var templateUpsertCmd = &cobra.Command{
	Use:   "upsert <call-type> --file <template.json>",
	Short: "Add or replace a template from a JSON file (comments allowed)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateUpsert,
}

var templateFile string

func init() {
	templateUpsertCmd.Flags().StringVarP(&templateFile, "file", "f", "", "template definition to store")
	_ = templateUpsertCmd.MarkFlagRequired("file")
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateSortCmd, templateUpsertCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	templates, err := a.templates.Load(cmd.Context())
	if err != nil {
		return err
	}
	keys, err := a.templates.Keys(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, key := range keys {
		tmpl := templates[key]
		fmt.Fprintf(out, "%-24s %-9s %-8s %s\n", key, tmpl.ProcessType, tmpl.Flow, tmpl.Title)
	}
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	tmpl, err := a.templates.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tmpl, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runTemplateSort(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	commented := dictionaryHasComments(a.cfg.Paths.Templates)
	if err := a.templates.Sort(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "- Dictionary sorted.")
	warnDroppedComments(cmd, a.cfg.Paths.Templates, commented)
	return nil
}

func runTemplateUpsert(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	var tmpl domain.Template
	if err := json.Unmarshal(jsonc.ToJSON(raw), &tmpl); err != nil {
		return fmt.Errorf("decode template %s: %w", templateFile, err)
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	commented := dictionaryHasComments(a.cfg.Paths.Templates)
	if err := a.templates.Upsert(cmd.Context(), args[0], tmpl); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "- Template %q saved.\n", args[0])
	warnDroppedComments(cmd, a.cfg.Paths.Templates, commented)
	return nil
}

func dictionaryHasComments(path string) bool {
	raw, err := os.ReadFile(path)
	return err == nil && repository.HasComments(raw)
}

func warnDroppedComments(cmd *cobra.Command, path string, commented bool) {
	if commented {
		fmt.Fprintf(cmd.ErrOrStderr(), "- Warning: comments in %s were not kept.\n", path)
	}
}
