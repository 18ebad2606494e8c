package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/livingtrust/livingtrust/internal/presentation/tui"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/client"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the trust advisor a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := advisorFor(cmd)
		if err != nil {
			return err
		}
		reply, err := adv.Chat(cmd.Context(), ports.ChatRequest{Message: strings.Join(args, " ")})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		text := reply.Response
		if rendered, err := tui.NewRenderer()(text); err == nil {
			text = rendered
		}
		fmt.Fprintln(out, strings.TrimRight(text, "\n"))
		if len(reply.Sources) > 0 {
			fmt.Fprintln(out, tui.StyleDim.Render("Sources: "+strings.Join(reply.Sources, ", ")))
		}
		fmt.Fprintln(out, tui.StyleDim.Render(advisor.Disclaimer))
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Review a trust document (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		adv, err := advisorFor(cmd)
		if err != nil {
			return err
		}
		a, err := adv.Analyze(cmd.Context(), string(data))
		if err != nil {
			return err
		}
		printAnalysis(cmd.OutOrStdout(), a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd, analyzeCmd)
	for _, c := range []*cobra.Command{askCmd, analyzeCmd} {
		c.Flags().String("api", "", "Use the advisor of a Living Trust API instead of a local one")
	}
}

// advisorFor returns the remote advisor when --api is set, else the
// configured local one (offline without an API key).
func advisorFor(cmd *cobra.Command) (ports.Advisor, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		var opts []client.Option
		if creds, err := loadCredentials(); err == nil {
			opts = append(opts, client.WithToken(creds.Token))
		}
		return client.New(api, opts...), nil
	}
	return advisor.New(cfg.AI, logger), nil
}

func printAnalysis(w io.Writer, a *domain.Analysis) {
	fmt.Fprintln(w, tui.StyleHeader.Render(fmt.Sprintf("Score: %d/100", a.Score)))
	if len(a.Issues) > 0 {
		fmt.Fprintln(w, "\nIssues:")
		for _, is := range a.Issues {
			line := fmt.Sprintf("  [%s] %s", is.Severity, is.Text)
			if is.Suggestion != "" {
				line += " (" + is.Suggestion + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range a.Recommendations {
			fmt.Fprintln(w, "  - "+r)
		}
	}
	if a.Summary != "" {
		fmt.Fprintln(w, "\n"+a.Summary)
	}
}
