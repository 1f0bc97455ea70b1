package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"qrlink/impl/core"
	"qrlink/internal/blobstore"
	"qrlink/internal/cache"
	"qrlink/internal/codegen"
	"qrlink/internal/config"
	"qrlink/internal/database"
	"qrlink/internal/http-server/api"
	"qrlink/internal/qrimage"
	"qrlink/lib/logger"
	"qrlink/lib/sl"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := logger.SetupLogger(conf.Env, *logPath)
	log.Info("starting qrlink",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("scan_base_url", conf.Scan.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoClient(ctx, conf.Mongo, log)
	if err != nil {
		log.With(
			sl.Err(err),
			slog.String("host", conf.Mongo.Host),
			sl.Secret("password", conf.Mongo.Password),
		).Error("mongodb not available")
		os.Exit(1)
	}

	encoder, err := qrimage.New(conf.Image.Size, conf.Image.Recovery)
	if err != nil {
		log.With(sl.Err(err)).Error("image encoder")
		os.Exit(1)
	}

	qrCore := core.New(db, codegen.New(), encoder, conf.Scan.BaseURL, log)

	blob, err := blobstore.NewGCS(ctx, conf.Storage, log)
	if err != nil {
		log.With(sl.Err(err)).Warn("image storage not available, qr codes are created without images")
	} else if blob != nil {
		qrCore.SetBlobStore(blob)
	}

	redisCache, err := cache.NewRedis(conf.Redis, log)
	if err != nil {
		log.With(sl.Err(err)).Warn("scan cache not available")
	} else if redisCache != nil {
		qrCore.SetCache(redisCache)
	}

	server := api.New(conf, log, qrCore)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.With(sl.Err(err)).Error("error starting server")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.With(sl.Err(err)).Error("server shutdown")
	}
	// handlers cut off by the shutdown timeout still log their scans inline
	qrCore.Wait()
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if err = blob.Close(); err != nil {
		log.With(sl.Err(err)).Warn("storage close")
	}
	if err = db.Close(shutdownCtx); err != nil {
		log.With(sl.Err(err)).Warn("mongodb close")
	}
	log.Info("stopped")
}
