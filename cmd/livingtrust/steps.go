package main

import (
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust/internal/presentation/graph"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/spf13/cobra"
)

// stepsCmd represents the steps command
var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Show the wizard steps",
	Long:  `Lists the wizard steps and their fields, or outputs a Mermaid diagram (graph TD) of the step flow.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(out, graph.GenerateMermaid(wizard.Steps(), nil))
			return
		}
		for _, s := range wizard.Steps() {
			names := make([]string, len(s.Fields))
			for i, f := range s.Fields {
				names[i] = f.Label()
				if f == s.Required {
					names[i] += " *"
				}
			}
			fmt.Fprintf(out, "%d. %s: %s\n", s.Number, s.Title, strings.Join(names, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().Bool("mermaid", false, "Print the step flow as a Mermaid graph")
}
