package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/azul/internal/config"
	"github.com/robalobadob/azul/internal/events"
	"github.com/robalobadob/azul/internal/history"
	"github.com/robalobadob/azul/internal/httpserver"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/store"
	"github.com/robalobadob/azul/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := session.NewManager(store.NewMemoryStore(),
		session.WithMaxAge(cfg.SessionMaxAge),
		session.WithFinishedTTL(cfg.SessionFinishedTTL),
	)

	// the archive is optional; a nil Results keeps /results answering 503
	var results httpserver.Results
	if cfg.DatabasePath != "" {
		db, err := history.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open result archive")
		}
		defer db.Close()
		st := history.NewStore(db)
		arch := history.NewArchiver(st, 256)
		mgr.Subscribe(arch)
		archDone := make(chan struct{})
		go func() {
			arch.Run(ctx)
			close(archDone)
		}()
		defer func() { <-archDone }()
		results = st
		log.Info().Str("path", cfg.DatabasePath).Msg("result archive enabled")
	}

	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect to nats")
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Warn().Err(err).Msg("nats drain")
			}
		}()
		mgr.Subscribe(events.NewPublisher(nc, cfg.NATSSubjectPrefix))
		log.Info().Str("url", cfg.NATSURL).Str("prefix", cfg.NATSSubjectPrefix).Msg("event publishing enabled")
	}

	hub := ws.NewHub(mgr, ws.Options{
		AllowOrigins:      cfg.ClientOrigins,
		AbortOnDisconnect: cfg.AbortOnDisconnect,
	})
	mgr.Subscribe(hub)

	go mgr.Run(ctx, cfg.SessionCleanupInterval)

	srv := httpserver.New(mgr, hub, results, httpserver.Options{
		AllowOrigins:   cfg.ClientOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	log.Info().Str("addr", cfg.Addr()).Msg("starting azul server")
	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		log.Error().Err(err).Msg("server exited")
		stop() // releases the archiver before the deferred waits
		return
	}
	log.Info().Msg("server stopped")
}
