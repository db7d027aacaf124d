package main

import (
	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				c.app.Config.Address = address
			}
			return server.Run(cmd.Context(), c.app)
		},
	}
	cmd.Flags().StringVar(&address, "addr", "", "Listen address (defaults to CONSOLE_ADDRESS)")
	return cmd
}
