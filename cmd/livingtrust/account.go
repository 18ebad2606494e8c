package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/livingtrust/livingtrust/internal/cli"
	"github.com/livingtrust/livingtrust/pkg/client"
	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:3001"

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account on a Living Trust API and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _ := cmd.Flags().GetString("api")
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Name: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read name: %w", err)
			}
			name = strings.TrimSpace(line)
		}
		password, err := cli.ReadPassword("Password: ", os.Stdin, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		res, err := client.New(api).Register(cmd.Context(), args[0], password, name)
		if err != nil {
			return err
		}
		return remember(cmd, api, res)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in to a Living Trust API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _ := cmd.Flags().GetString("api")
		password, err := cli.ReadPassword("Password: ", os.Stdin, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		res, err := client.New(api).Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		return remember(cmd, api, res)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := loadCredentials()
		if err != nil {
			return err
		}
		u, err := client.New(creds.API, client.WithToken(creds.Token)).Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> on %s\n", u.Name, u.Email, creds.API)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, whoamiCmd)
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().String("api", defaultAPI, "Living Trust API base URL")
	}
	registerCmd.Flags().String("name", "", "Display name")
}

func remember(cmd *cobra.Command, api string, res *client.AuthResult) error {
	path, err := cli.CredentialsPath()
	if err != nil {
		return err
	}
	if err := cli.SaveCredentials(path, &cli.Credentials{API: api, Email: res.User.Email, Token: res.Token}); err != nil {
		return err
	}
	cli.PrintSystemMessage(cmd.OutOrStdout(), "%s Logged in as %s.", res.Message, res.User.Email)
	return nil
}

func loadCredentials() (*cli.Credentials, error) {
	path, err := cli.CredentialsPath()
	if err != nil {
		return nil, err
	}
	return cli.LoadCredentials(path)
}
