package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/lifecycle"
	"github.com/km-arc/go-container/framework/events"
)

func main() {
	application, err := app.Instance() // loads .env automatically
	if err != nil {
		panic(err)
	}
	defer func() { _ = application.Logger.Sync() }()

	log := application.Logger

	// ── Lifecycle logging ────────────────────────────────────────────────────

	events.Listen(application.Events(), func(e lifecycle.Rebound) {
		log.Info("binding replaced", zap.String("abstract", e.Abstract))
	})
	events.Listen(application.Events(), func(e lifecycle.UnknownBinding) {
		log.Warn("unknown binding requested", zap.String("abstract", e.Abstract))
	})

	// ── Application bindings ─────────────────────────────────────────────────

	application.MustBind(container.Bind(application).As("app").MustBuild())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatal("application stopped", zap.Error(err))
	}
}
