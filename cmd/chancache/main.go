package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache/cache"
	"github.com/tmitchel/chancache/config"
	"github.com/tmitchel/chancache/events"
	"github.com/tmitchel/chancache/rest"
	"github.com/tmitchel/chancache/schedule"
	"github.com/tmitchel/chancache/server"
	"github.com/tmitchel/chancache/services"
	"github.com/tmitchel/chancache/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("CHANCACHE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cache.New()
	api := rest.NewClient(cfg.APIBaseURL, cfg.Token, cfg.RequestTimeout)

	sched := schedule.New()
	sched.Start()
	defer sched.Stop()

	hub := events.NewHub()
	go hub.Run()
	defer hub.Close()

	// setup all services
	resolve, err := services.NewResolver(c, api)
	if err != nil {
		logrus.Fatal(err)
	}

	override, err := services.NewOverrider(c, api)
	if err != nil {
		logrus.Fatal(err)
	}

	reconcile, err := services.NewReconciler(c, api, resolve, hub)
	if err != nil {
		logrus.Fatal(err)
	}

	typer, err := services.NewTyper(c, api, sched, cfg.TypingInterval, cfg.TickTimeout)
	if err != nil {
		logrus.Fatal(err)
	}

	// warm start from the last snapshot when a database is configured
	if cfg.DatabaseURL != "" {
		db, err := store.NewWithMigration(cfg.DatabaseURL)
		if err != nil {
			logrus.Fatal(err)
		}
		defer db.Close()

		snap, err := services.NewSnapshotter(c, db)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := snap.Load(); err != nil {
			logrus.Errorf("Error loading snapshot %v", err)
		}

		cancel := sched.Every(cfg.SnapshotEvery, func() {
			if err := snap.Save(); err != nil {
				logrus.Errorf("Error saving snapshot %v", err)
			}
		})
		defer func() {
			cancel()
			if err := snap.Save(); err != nil {
				logrus.Errorf("Error saving snapshot %v", err)
			}
		}()
	}

	if cfg.GatewayURL != "" {
		listener := &events.Listener{
			Cache:      c,
			Reconciler: reconcile,
			Typer:      typer,
			SelfUserID: cfg.SelfUserID,
			Timeout:    cfg.RequestTimeout,
		}
		go func() {
			if err := listener.Run(ctx, cfg.GatewayURL); err != nil {
				logrus.Errorf("gateway listener stopped %v", err)
			}
		}()
	}

	// build the server and inject dependencies
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.NewServer(c, resolve, override, reconcile, typer, hub).Serve(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	// serve
	logrus.WithField("addr", cfg.ListenAddr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Error(err)
	}
}
