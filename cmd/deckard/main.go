package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/deckard-app/deckard/internal/config"
	"github.com/deckard-app/deckard/internal/deckimport"
	"github.com/deckard-app/deckard/internal/service"
	"github.com/deckard-app/deckard/internal/srs"
	"github.com/deckard-app/deckard/internal/storage"
	"github.com/deckard-app/deckard/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("deckard", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	addSource := flags.String("add-source", "", "register a deck source (local directory or git URL) and exit")
	runSync := flags.Bool("sync", false, "reconcile all sources and exit")
	serve := flags.Bool("serve", false, "start the HTTP API")
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fatal("parsing flags", err)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fatal("loading config", err)
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		fatal("opening database", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB)

	ctx := context.Background()

	switch {
	case *addSource != "":
		kind := deckimport.SourceKind(*addSource)
		id, err := db.InsertSource(ctx, *addSource, kind)
		if err != nil {
			fatal("adding source", err)
		}
		slog.Info("source added", "id", id, "kind", kind, "path", *addSource)

	case *runSync:
		if err := deckimport.RunSync(ctx, db, cfg.ReposDir); err != nil {
			fatal("syncing sources", err)
		}

	case *serve:
		loc, err := cfg.Location()
		if err != nil {
			fatal("resolving timezone", err)
		}
		policy := srs.Policy{
			HardIsLapse:     cfg.Review.HardIsLapse,
			MaxIntervalDays: cfg.Review.MaxIntervalDays,
		}
		reviews := service.NewReviewService(db, policy)
		study := service.NewStudyService(db, loc, cfg.Stats.SecondsPerReview)
		server := web.NewServer(db, reviews, study, cfg.ReposDir)
		slog.Info("listening", "addr", cfg.Listen)
		if err := server.Start(cfg.Listen); err != nil {
			fatal("server stopped", err)
		}

	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass --serve, --sync or --add-source")
		flags.PrintDefaults()
		os.Exit(2)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
