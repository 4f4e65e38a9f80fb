// Package main is the entry point for the work tracker server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, token service, origin policy, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/worktracker/internal/auth"
	"github.com/sakif/worktracker/internal/server"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	production := env == "production"

	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH allows overriding for deployments, e.g.
	//   DB_PATH=/var/lib/worktracker/prod.db
	dbPath := "data/worktracker.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string. Use:
	//   JWT_SECRET=$(openssl rand -hex 32)
	// The server refuses to start without one — sessions cannot be
	// safely issued with a guessable secret.
	sessionTTL := auth.DefaultSessionTTL
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		parsed, err := time.ParseDuration(ttlStr)
		if err != nil {
			logger.Error("invalid SESSION_TTL value", slog.String("value", ttlStr))
			os.Exit(1)
		}
		sessionTTL = parsed
	}
	tokens, err := auth.NewTokenService(os.Getenv("JWT_SECRET"), sessionTTL)
	if err != nil {
		logger.Error("failed to configure sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	bcryptCost := auth.DefaultCost
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		bcryptCost, err = strconv.Atoi(costStr)
		if err != nil {
			logger.Error("invalid BCRYPT_COST value", slog.String("value", costStr))
			os.Exit(1)
		}
	}
	passwords, err := auth.NewPasswordService(bcryptCost)
	if err != nil {
		logger.Error("failed to configure password hashing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cross-site requests are rejected only in production; local
	// development tools (curl, httpie) send no Origin header at all.
	origin, err := auth.NewOriginPolicy(production, os.Getenv("APP_ORIGIN"), os.Getenv("APP_ORIGIN_REGEX"))
	if err != nil {
		logger.Error("failed to configure origin policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := server.Config{
		Port:            port,
		DBPath:          dbPath,
		Env:             env,
		SessionTTL:      sessionTTL,
		SecureCookie:    production,
		GlobalRateLimit: 250,
		AuthRateLimit:   25,
		RateWindow:      15 * time.Minute,
	}

	srv, err := server.New(cfg, tokens, passwords, origin, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
