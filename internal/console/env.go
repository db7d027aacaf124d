// Package console holds the dashboard state of the admin console: the
// resource and video collections with their edit sessions, the in-memory
// subject and branch registries, the users list, the notification composer
// and the router that switches between login and dashboard.
//
// Collections are only ever replaced by a full refetch after a confirmed
// mutation. Values in this package are not safe for concurrent use.
package console

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/model"
	"github.com/rgpvpanel/console/internal/session"
)

// API is the subset of the resource API the console drives.
type API interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	CreateResource(ctx context.Context, token string, form model.ResourceForm) error
	UpdateResource(ctx context.Context, token, id string, form model.ResourceForm) error
	DeleteResource(ctx context.Context, token, id string) error
	ListVideos(ctx context.Context) ([]model.Video, error)
	CreateVideo(ctx context.Context, token string, form model.VideoForm) error
	UpdateVideo(ctx context.Context, token, id string, form model.VideoForm) error
	DeleteVideo(ctx context.Context, token, id string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	SendNotification(ctx context.Context, token string, n model.Notification) error
}

// ReadPolicy decides whether a failed list fetch is shown to the user.
type ReadPolicy int

const (
	// ReadSwallow logs list failures and keeps the stale collection.
	ReadSwallow ReadPolicy = iota
	// ReadSurface also raises one error notice.
	ReadSurface
)

// ParseReadPolicy accepts "swallow" or "surface".
func ParseReadPolicy(s string) (ReadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "swallow":
		return ReadSwallow, nil
	case "surface":
		return ReadSurface, nil
	}
	return ReadSwallow, fmt.Errorf("unknown read error policy %q", s)
}

// Env bundles the collaborators shared by every view.
type Env struct {
	API        API
	Session    *session.Session
	Notifier   Notifier
	Log        *zap.Logger
	ReadPolicy ReadPolicy
}

func (e Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e Env) token() string {
	if e.Session == nil {
		return ""
	}
	return e.Session.Token()
}

func (e Env) info(msg string) {
	if e.Notifier != nil {
		e.Notifier.Notify(Notice{Level: LevelInfo, Message: msg})
	}
}

func (e Env) fail(msg string) {
	if e.Notifier != nil {
		e.Notifier.Notify(Notice{Level: LevelError, Message: msg})
	}
}

// readFailed applies the read policy to a failed list fetch.
func (e Env) readFailed(what string, err error) {
	e.logger().Warn("fetch failed", zap.String("collection", what), zap.Error(err))
	if e.ReadPolicy == ReadSurface {
		e.fail("Failed to load " + what + ".")
	}
}
