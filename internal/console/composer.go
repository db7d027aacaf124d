package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/apiclient"
	"github.com/rgpvpanel/console/internal/model"
)

const (
	msgNotificationSent   = "Notification sent successfully!"
	msgNotificationFailed = "Failed to send notification."

	previewTitle   = "Notification Title"
	previewMessage = "Your notification message will appear here..."
)

// Preview is how the draft will look on a phone.
type Preview struct {
	Title   string
	Message string
	Type    model.NotificationType
	Label   string
}

// Composer is the broadcast form. Its only state is the draft.
type Composer struct {
	env   Env
	Draft model.Notification
}

// NewComposer returns a composer with an empty announcement draft.
func NewComposer(env Env) *Composer {
	return &Composer{env: env, Draft: model.Notification{Type: model.NotifyAnnouncement}}
}

// Preview renders the current draft. It has no side effects.
func (c *Composer) Preview() Preview {
	p := Preview{
		Title:   c.Draft.Title,
		Message: c.Draft.Message,
		Type:    c.Draft.Type,
		Label:   c.Draft.Type.Label(),
	}
	if p.Title == "" {
		p.Title = previewTitle
	}
	if p.Message == "" {
		p.Message = previewMessage
	}
	return p
}

// Send broadcasts the draft. On success the draft is reset; on failure the
// server's message is shown when it sent one.
func (c *Composer) Send(ctx context.Context) error {
	if c.Draft.Type == "" {
		c.Draft.Type = model.NotifyAnnouncement
	}
	if err := model.Validate(c.Draft); err != nil {
		c.env.fail(err.Error())
		return err
	}
	if err := c.env.API.SendNotification(ctx, c.env.token(), c.Draft); err != nil {
		c.env.logger().Error("send notification failed", zap.Error(err))
		msg := msgNotificationFailed
		var reqErr *apiclient.RequestError
		if errors.As(err, &reqErr) && reqErr.Message != "" {
			msg = reqErr.Message
		}
		c.env.fail(msg)
		return fmt.Errorf("send notification: %w", err)
	}
	c.env.info(msgNotificationSent)
	c.Draft = model.Notification{Type: model.NotifyAnnouncement}
	return nil
}
