// Package main is the entry point for the Project Tails game.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/assets"
	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/internal/game"
	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Project Tails ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("game error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("game closed normally")
}

func run(cfg *config.Config) error {
	catalog := assets.NewCatalog(os.DirFS(cfg.Assets.Root), logger.Named("assets"))
	defer catalog.Close()

	n, err := catalog.LoadImages(".")
	if err != nil {
		return fmt.Errorf("loading images from %s: %w", cfg.Assets.Root, err)
	}
	logger.Info("images loaded", zap.String("root", cfg.Assets.Root), zap.Int("count", n))

	if cfg.Assets.EntityData != "" {
		if err := catalog.LoadEntityData(cfg.Assets.EntityData); err != nil {
			return fmt.Errorf("loading entity data: %w", err)
		}
	}

	lvl, err := level.Load(catalog, cfg.Assets, logger.Named("level"))
	if err != nil {
		return err
	}

	g, err := game.New(cfg, catalog, lvl, logger.Named("game"))
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	defer g.Close()

	return g.Run()
}
