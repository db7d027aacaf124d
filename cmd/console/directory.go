package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/model"
)

func newSubjectsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Subjects derived from the published resources",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List subject codes and names",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.router(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME")
			for _, s := range r.Dashboard().Subjects.Subjects() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Code, s.Name)
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newBranchesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Branch codes offered by the resource form",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the default branch codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range console.NewBranchRegistry().Branches() {
				fmt.Fprintln(c.out, b)
			}
			return nil
		},
	})
	return cmd
}

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Registered app users",
	}
	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the users as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := c.loadUsers(cmd)
			if err != nil {
				return err
			}
			var w io.Writer = c.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := users.ExportCSV(w); err != nil {
				return err
			}
			if w != c.out {
				fmt.Fprintf(c.errOut, "Exported %d users to %s\n", len(users.Users()), output)
			}
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "-", "Destination file, - for stdout")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List users",
			RunE: func(cmd *cobra.Command, args []string) error {
				users, err := c.loadUsers(cmd)
				if err != nil {
					return err
				}
				printUsers(c.out, users.Users())
				return nil
			},
		},
		export,
	)
	return cmd
}

func (c *cli) loadUsers(cmd *cobra.Command) (*console.UsersView, error) {
	r, err := c.router(cmd.Context())
	if err != nil {
		return nil, err
	}
	users := r.Dashboard().Users
	if err := users.Refresh(cmd.Context()); err != nil {
		return nil, c.result(err)
	}
	return users, nil
}

func printUsers(w io.Writer, users []model.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tPROGRAM\tBRANCH\tSEM\tJOINED")
	for _, u := range users {
		joined := "-"
		if !u.JoinedAt.IsZero() {
			joined = u.JoinedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", u.Name, u.Phone, u.Program, u.Branch, u.Semester, joined)
	}
	tw.Flush()
}
