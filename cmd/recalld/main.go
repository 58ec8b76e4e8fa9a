package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recalld/recalld/internal/catalog"
	"github.com/recalld/recalld/internal/config"
	"github.com/recalld/recalld/internal/logging"
	"github.com/recalld/recalld/internal/review"
	"github.com/recalld/recalld/internal/storage"
	"github.com/recalld/recalld/internal/web"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		bootLog := logging.New("error", true)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Console)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database).Msg("failed to open database")
	}
	defer db.Close()
	log.Info().Str("path", cfg.Database).Msg("database opened")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncer := catalog.NewSyncer(db, log, cfg.ReposDir)
	for _, src := range cfg.Sources {
		if _, err := syncer.AddSource(ctx, src); err != nil {
			log.Error().Err(err).Str("source", src).Msg("failed to register source")
		}
	}
	if err := syncer.SyncAll(ctx); err != nil {
		log.Error().Err(err).Msg("initial catalog sync failed")
	}

	store := review.New(review.Config{
		OwnerID:     cfg.Owner,
		Persistence: db,
		Logger:      log,
		Location:    loc,
	})
	if err := store.Load(ctx); err != nil {
		// Advisory: the daemon still runs, starting from an empty
		// collection; gradings are persisted as they happen.
		log.Error().Err(err).Msg("failed to load review collection")
	}
	if err := store.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start review store")
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.NewServer(store, db, syncer, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Listen).Str("owner", cfg.Owner).Msg("recalld listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	stop()
	store.Wait()
}
