package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"transcribr/internal/config"
	"transcribr/internal/daemon"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
	"transcribr/internal/services/ffmpeg"
	"transcribr/internal/services/whisper"
	"transcribr/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}
	defer store.Close()

	broadcaster := progress.NewBroadcaster()
	transcriber := whisper.NewService(whisper.Config{
		Binary:   cfg.Whisper.Binary,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
		Timeout:  time.Duration(cfg.Whisper.TimeoutSeconds) * time.Second,
	})
	sampler := ffmpeg.NewSampler(cfg.FFmpegBinary())
	manager := workflow.NewManager(cfg, store, logger, broadcaster, transcriber, sampler)

	d, err := daemon.New(cfg, store, logger, manager, broadcaster)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("transcribrd shutting down")
}
