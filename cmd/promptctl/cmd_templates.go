package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imkonsowa/waiter-prompts/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the prompt template catalogue",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates and their languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLANGUAGES")
		for _, name := range catalog.Names() {
			fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(catalog.Languages(name), ", "))
		}
		return w.Flush()
	},
}

var templatesInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show catalogue files, checksums and load time as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Info())
	},
}

var templatesVarsCmd = &cobra.Command{
	Use:   "vars <name> [lang]",
	Short: "List the variables a template references",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		lang := "zh-CN"
		if len(args) == 2 {
			lang = args[1]
		}

		vars, err := templates.NewRenderer(catalog).Variables(args[0], lang)
		if err != nil {
			return err
		}
		for _, v := range vars {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesInfoCmd)
	templatesCmd.AddCommand(templatesVarsCmd)
}

func loadCatalog() (*templates.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return templates.LoadCatalog(cfg.Templates.Files...)
}
