package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/config"
	"github.com/hongminglow/tasks-be/internal/logging"
	"github.com/hongminglow/tasks-be/internal/server"
	"github.com/hongminglow/tasks-be/internal/storage/backend"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := backend.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StorageDriver).Fatal("init storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close storage")
		}
	}()

	srv := server.New(cfg, store, log)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":   cfg.HTTPAddress(),
			"driver": cfg.StorageDriver,
		}).Info("tasks backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("graceful shutdown error")
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found; relying on existing environment")
	}
}
