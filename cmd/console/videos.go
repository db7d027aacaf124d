package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/model"
)

type videoFlags struct {
	subjectCode string
	subjectName string
	title       string
	youtubeURL  string
	description string
}

func (f *videoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.subjectCode, "subject-code", "", "Subject code")
	cmd.Flags().StringVar(&f.subjectName, "subject-name", "", "Subject name")
	cmd.Flags().StringVar(&f.title, "title", "", "Video title")
	cmd.Flags().StringVar(&f.youtubeURL, "youtube-url", "", "YouTube link")
	cmd.Flags().StringVar(&f.description, "description", "", "Optional description")
}

func (f *videoFlags) apply(cmd *cobra.Command, form *model.VideoForm) {
	set := cmd.Flags().Changed
	if set("subject-code") {
		form.SubjectCode = f.subjectCode
	}
	if set("subject-name") {
		form.SubjectName = f.subjectName
	}
	if set("title") {
		form.Title = f.title
	}
	if set("youtube-url") {
		form.YoutubeURL = f.youtubeURL
	}
	if set("description") {
		form.Description = f.description
	}
}

func newVideosCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage YouTube video links",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List videos",
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := c.router(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSUBJECT\tTITLE\tURL")
				for _, v := range r.Dashboard().Videos.Videos() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.SubjectCode, v.Title, v.YoutubeURL)
				}
				return tw.Flush()
			},
		},
		newVideosCreateCmd(c),
		newVideosUpdateCmd(c),
		newVideosDeleteCmd(c),
	)
	return cmd
}

func newVideosCreateCmd(c *cli) *cobra.Command {
	var flags videoFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			view := r.Dashboard().Videos
			flags.apply(cmd, &view.Form)
			return c.result(view.Submit(ctx))
		},
	}
	flags.register(cmd)
	return cmd
}

func newVideosUpdateCmd(c *cli) *cobra.Command {
	var flags videoFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			view := r.Dashboard().Videos
			if err := view.BeginEditByID(args[0]); err != nil {
				return err
			}
			flags.apply(cmd, &view.Form)
			return c.result(view.Submit(ctx))
		},
	}
	flags.register(cmd)
	return cmd
}

func newVideosDeleteCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			deleted, err := r.Dashboard().Videos.Remove(ctx, args[0], c.confirmer(yes))
			if err != nil {
				return c.result(err)
			}
			if deleted {
				fmt.Fprintln(c.out, "Deleted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
