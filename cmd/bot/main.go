package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ad-creator/internal/config"
	"ad-creator/internal/handlers"
	"ad-creator/internal/httpclient"
	"ad-creator/internal/mediagroup"
	"ad-creator/internal/pipeline"
	"ad-creator/internal/session"
	"ad-creator/internal/telegram"
)

// shutdownDrain caps albums flushed after the stop signal.
const shutdownDrain = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	p, err := pipeline.Build(cfg, httpClient, logger)
	if err != nil {
		logger.Error("pipeline init failed", "err", err)
		os.Exit(1)
	}

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Service:  p,
		Sessions: session.NewStore(session.Options{MaxItems: cfg.MaxHistoryItems}),
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := handlers.NewRunner(ctx, cfg.MaxConcurrent, shutdownDrain)
	onAlbum := func(album mediagroup.Album) {
		runner.Go(cfg.RequestTimeout*time.Duration(len(album.FileIDs)), func(ctx context.Context) {
			handler.HandleAlbum(ctx, album)
		})
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		MaxItems: cfg.MaxAlbumPhotos,
		OnFlush:  onAlbum,
	})
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username(), "image_provider", cfg.ImageProvider)

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})

	poll(ctx, logger, updates, func(update telegram.Update) {
		runner.Go(cfg.RequestTimeout, func(ctx context.Context) {
			if err := handler.HandleUpdate(ctx, update); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
			}
		})
	})

	tg.StopUpdates()
	aggregator.Close()
	runner.Wait()
	logger.Info("bot stopped")
}

func poll(ctx context.Context, logger *slog.Logger, updates <-chan telegram.Update, dispatch func(telegram.Update)) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}
			dispatch(update)
		}
	}
}
