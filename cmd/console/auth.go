package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/model"
	"github.com/rgpvpanel/console/internal/session"
)

func newLoginCmd(c *cli) *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the administrator and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Username == "" {
				creds.Username = c.prompt("Username")
			}
			if creds.Password == "" {
				creds.Password = c.prompt("Password")
			}
			r := console.NewRouter(c.app.Env(c))
			if err := r.Login(cmd.Context(), creds); err != nil {
				fmt.Fprintln(c.errOut, r.LoginError())
				return errReported
			}
			fmt.Fprintf(c.out, "Logged in to %s\n", c.app.Client.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Admin username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Admin password (prompted when empty)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := console.NewRouter(c.app.Env(c))
			if err := r.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and what its token says",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.out, "API:     %s\n", c.app.Client.BaseURL())
			token, ok, err := c.app.Session.Load()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "Session: logged out")
				return nil
			}
			fmt.Fprintln(c.out, "Session: logged in")
			info, err := session.Describe(token)
			if err != nil {
				// Opaque tokens carry nothing more to show.
				return nil
			}
			if info.Subject != "" {
				fmt.Fprintf(c.out, "Subject: %s\n", info.Subject)
			}
			if info.Role != "" {
				fmt.Fprintf(c.out, "Role:    %s\n", info.Role)
			}
			if !info.IssuedAt.IsZero() {
				fmt.Fprintf(c.out, "Issued:  %s\n", info.IssuedAt.Format(time.RFC3339))
			}
			if !info.ExpiresAt.IsZero() {
				fmt.Fprintf(c.out, "Expires: %s\n", info.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
