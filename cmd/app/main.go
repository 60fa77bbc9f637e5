package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"darkcross/internal/api"
	"darkcross/internal/app"
	"darkcross/internal/domain"
	"darkcross/internal/engine"
	"darkcross/internal/event"
	"darkcross/internal/infra/feed"
	"darkcross/internal/infra/refprice"
	"darkcross/internal/policy"
	"darkcross/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Pre-warm event pools before the feed starts publishing
	event.Warmup()

	// 5. Read model + Sequencer
	books := service.NewBookService()
	policies := policy.Chain{policy.NewMinQty(), policy.NewBand()}

	seq := engine.NewSequencer(cfg.Engine.InboxSize, bootstrap.Storage, policies, books.OnCross)
	seq.SetMarketObserver(books.UpdateMarket)

	// Start Sequencer in its own goroutine (The Hotpath Loop)
	go seq.Run(ctx)
	slog.InfoContext(ctx, "✅ Sequencer (Hotpath) started")

	// All producers publish through one intake so sequence numbers stay
	// contiguous across the feed, the poller and the API.
	intake := event.NewIntake(seq.Inbox())

	// 6. Reference Price Poller
	refClient := refprice.NewClient(intake, cfg.Feed.Symbols, cfg.RefPrice.URL, cfg.RefPrice.PollIntervalSec)
	if err := refClient.Start(ctx); err != nil {
		slog.Error("Failed to start reference price client", slog.Any("error", err))
	}
	defer refClient.Stop()

	// 7. NBBO Feed Worker
	signer := feed.NewSigner(cfg.Feed.AccessKey, cfg.Feed.SecretKey)
	var feedWorker domain.FeedWorker = feed.NewWorker(cfg.Feed.WSURL, cfg.Feed.Symbols, intake, signer)
	if err := feedWorker.Connect(ctx); err != nil {
		slog.Error("Failed to connect feed", slog.Any("error", err))
	}
	defer feedWorker.Disconnect()
	slog.InfoContext(ctx, "✅ Feed worker started", slog.Int("symbols", len(cfg.Feed.Symbols)))

	// 8. API Server
	server := api.NewServer(cfg.API.ListenAddr, intake, seq, books, bootstrap.Storage)
	server.Start(ctx)

	slog.InfoContext(ctx, "✨ Darkcross fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
