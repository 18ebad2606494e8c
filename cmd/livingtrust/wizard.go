package main

import (
	"errors"
	"os"

	"github.com/livingtrust/livingtrust/internal/cli"
	"github.com/spf13/cobra"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Create a Living Trust step by step",
	Long: `Walks through the five wizard steps and asks for confirmation before the
trust is created. Without --api the trust is saved in the local store; with
--api it is submitted to a running server using the token saved by login.

Interrupted sessions are kept and can be resumed with --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		opts := cli.WizardOptions{In: os.Stdin, Out: cmd.OutOrStdout()}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.API, _ = cmd.Flags().GetString("api")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		if opts.API != "" {
			creds, err := loadCredentials()
			switch {
			case err == nil:
				opts.Token = creds.Token
			case errors.Is(err, cli.ErrNotLoggedIn):
				logger.Warn("submitting without a login, the trust will have no owner")
			default:
				return err
			}
		}
		return cli.RunWizard(cfg, logger, opts)
	},
}

func init() {
	rootCmd.AddCommand(wizardCmd)
	wizardCmd.Flags().StringP("session", "s", "", "Resume a saved session")
	wizardCmd.Flags().String("api", "", "Submit to a Living Trust API (e.g. http://localhost:3001)")
	wizardCmd.Flags().Bool("plain", false, "Use line prompts instead of interactive forms")
	wizardCmd.Flags().Bool("json", false, "Read answers and write events as JSON lines")
}
