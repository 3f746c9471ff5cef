package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"pin-support-be/internal/bootstrap"
	"pin-support-be/internal/config"
	"pin-support-be/internal/server"
	"pin-support-be/internal/tracer"
	"pin-support-be/pkg/events"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		if errors.Is(err, config.ErrConfiguration) {
			log.Fatalf("Refusing to start: %v", err)
		}
		log.Fatalf("Startup failed: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint, container.Logger)

	srv := server.New(cfg, container)

	// 3. Run server and background workers until a signal arrives
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		container.WebSocketHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return container.TicketConsumer.Consume(gctx)
	})

	if container.NatsSubscriber != nil {
		g.Go(func() error {
			return container.NatsSubscriber.Subscribe(gctx, events.TypeTicketEscalated, bootstrap.TicketMailerDurable, container.TicketConsumer.Mail)
		})
	}

	g.Go(srv.Run)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			container.Logger.Error("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		return shutdownTracer(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		container.Logger.Error("Main", "Stopped with error", map[string]interface{}{"error": err.Error()})
	}
}
