package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/model"
)

type notifyFlags struct {
	title   string
	message string
	typ     string
}

func (f *notifyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Notification title")
	cmd.Flags().StringVar(&f.message, "message", "", "Notification body")
	cmd.Flags().StringVar(&f.typ, "type", string(model.NotifyAnnouncement), "announcement, resource, alert, update, maintenance or event")
}

func (f *notifyFlags) draft() model.Notification {
	return model.Notification{Title: f.title, Message: f.message, Type: model.NotificationType(f.typ)}
}

func newNotifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Broadcast push notifications to app users",
	}
	var send, preview notifyFlags
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send a notification to every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.router(cmd.Context())
			if err != nil {
				return err
			}
			composer := r.Dashboard().Composer
			composer.Draft = send.draft()
			if !composer.Draft.Type.Valid() {
				return fmt.Errorf("unknown notification type %q", composer.Draft.Type)
			}
			return c.result(composer.Send(cmd.Context()))
		},
	}
	send.register(sendCmd)
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how a notification will look without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			composer := console.NewComposer(c.app.Env(c))
			composer.Draft = preview.draft()
			p := composer.Preview()
			fmt.Fprintf(c.out, "[%s]\n%s\n%s\n", p.Label, p.Title, p.Message)
			return nil
		},
	}
	preview.register(previewCmd)
	cmd.AddCommand(sendCmd, previewCmd)
	return cmd
}
