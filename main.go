package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/talentflow/app"
	"github.com/mbolis/talentflow/config"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/routes"
	"github.com/mbolis/talentflow/seed"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	store := database.NewStore(db)
	if cfg.Seed {
		if err = seed.Ensure(context.Background(), store, seed.DefaultOptions()); err != nil {
			log.Fatal("main.db.seed:", err)
		}
	}
	if cfg.Simulate.Enabled() {
		log.Infof("simulating latency in [%s, %s] and a failure rate of %.0f%%",
			cfg.Simulate.LatencyMin, cfg.Simulate.LatencyMax, cfg.Simulate.FailureRate*100)
	}

	handler := routes.Wire(app.New(store, cfg))

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
