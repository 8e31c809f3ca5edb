package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imkonsowa/waiter-prompts/bootstrap"
	"github.com/imkonsowa/waiter-prompts/models"
)

var buildReq models.PromptRequest
var buildJSON bool

var buildCmd = &cobra.Command{
	Use:   "build [text]",
	Short: "Build a prompt for a dining request",
	Example: `  promptctl build "4人聚餐，预算300元，不吃海鲜"
  promptctl build --user U123456 --order-placed "朋友聚会，有包间"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildReq.UserID, "user", "", "User ID for order and game history")
	buildCmd.Flags().StringVar(&buildReq.Location, "location", "", "City used for weather and local dishes")
	buildCmd.Flags().StringVar(&buildReq.Language, "lang", "", "Template language")
	buildCmd.Flags().StringVar(&buildReq.Template, "template", "", "Force a template by name")
	buildCmd.Flags().BoolVar(&buildReq.OrderPlaced, "order-placed", false, "The table has already ordered")
	buildCmd.Flags().BoolVar(&buildReq.SmartSelect, "smart", false, "Pick the template from slot weights")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Print the full result as JSON")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Templates.Watch = false

	rt, err := bootstrap.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	req := buildReq
	req.Text = strings.Join(args, " ")

	res, err := rt.Builder.Build(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if buildJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res.Event(req))
	}

	fmt.Fprintf(out, "intent:   %s\ntemplate: %s (%s)\nslots:    %s\n\n%s\n",
		res.Intent, res.Template, res.Language, res.Slots.String(), res.Prompt)
	return nil
}
