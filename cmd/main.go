package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"digit-recognizer/db"
	"digit-recognizer/internal/auth"
	"digit-recognizer/internal/classifier"
	"digit-recognizer/internal/config"
	"digit-recognizer/internal/recognition"
	"digit-recognizer/internal/user"
	"digit-recognizer/internal/web"
	"digit-recognizer/middleware"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// loadModel returns nil when the artifact cannot be read. The server still
// starts and recognition requests report the model as unavailable.
func loadModel(path string, log *logrus.Logger) classifier.Classifier {
	model, err := classifier.Load(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Error loading model")
		return nil
	}
	log.WithField("path", path).Info("Model loaded successfully")
	return model
}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Digit recognizer exited")
	}
}

// run returns once the server has stopped. Deferred cleanup runs before
// main decides the exit status.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger(cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"pid":     os.Getpid(),
		"runtime": runtime.GOOS + "/" + runtime.GOARCH,
		"go":      runtime.Version(),
	}).Info("Starting digit recognizer")
	log.Debugf("Configuration: %s", cfg)

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()
	log.WithField("type", cfg.DatabaseType).Info("Database ready")

	repoFactory := db.NewRepositoryFactory(conn, cfg.DatabaseType)
	userRepo := repoFactory.NewUserRepository()
	if cfg.DatabaseType == config.SQLite {
		dbManager := db.NewDBManager(log)
		defer dbManager.Stop()
		userRepo = db.NewSerializedUserRepository(userRepo, dbManager)
	}

	userService := user.NewUserService(
		userRepo,
		auth.NewPasswordHasher(cfg.HashIterations),
		user.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		log,
	)
	recognitionService := recognition.NewRecognitionService(loadModel(cfg.ModelPath, log), log)
	tokens := auth.NewTokenIssuer(cfg.JwtKey, cfg.JwtTTL)

	webHandler, err := web.NewWebHandler(userService, recognitionService, tokens, conn, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialise web handler: %w", err)
	}
	router := webHandler.SetupRoutes()
	loggedRouter := middleware.LoggingMiddleware(log)(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           loggedRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Server is starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	return waitForShutdown(server, serverErr, stop, log)
}

// waitForShutdown blocks until the server fails or a signal arrives. A
// listener failure is returned so the process exits non-zero.
func waitForShutdown(server *http.Server, serverErr <-chan error, stop <-chan os.Signal, log *logrus.Logger) error {
	select {
	case err, ok := <-serverErr:
		if ok {
			log.WithError(err).Error("Server ListenAndServe error")
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down the server...")
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
