package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/app/scoutapp"
	"github.com/hamiltoon/housing-scout/internal/config"
	"github.com/hamiltoon/housing-scout/internal/infra/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single daily cycle and exit")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := scoutapp.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("create scout app", zap.Error(err))
	}
	defer app.Shutdown()

	if *once {
		if err := app.RunOnce(ctx); err != nil {
			log.Fatal("daily run failed", zap.Error(err))
		}
		return
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("scout worker failed", zap.Error(err))
	}
}
