package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/app"
	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/signing"
)

// Run wires a web console around a and serves it until ctx is cancelled.
func Run(ctx context.Context, a *app.App) error {
	notices := &console.Notices{}
	router := console.NewRouter(a.Env(notices))
	signer := signing.NewSigner(a.Config.ConfirmSecret, a.Config.ConfirmTTL)

	var uploader Uploader
	store, err := a.Storage(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		uploader = store
		a.Log.Info("pdf uploads enabled", zap.String("endpoint", a.Config.S3Endpoint), zap.String("bucket", a.Config.S3Bucket))
	}

	srv, err := New(a.Config, router, notices, signer, uploader, a.Log.Named("web"))
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}
	return srv.Serve(ctx)
}
