package main

import (
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of livingtrust",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "livingtrust version %s\n", strings.TrimSpace(livingtrust.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
