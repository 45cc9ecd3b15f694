package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/codec"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/config"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/handler"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/middleware"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/session"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/sharing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fieldCipher, err := crypto.NewFieldCipher(cfg.CipherMode)
	if err != nil {
		slog.Error("invalid cipher mode", "error", err)
		os.Exit(1)
	}
	entryCodec := codec.New(fieldCipher)
	kdf := crypto.NewKeyDeriver(cfg.KDFIterations)

	sessions := session.NewStore(cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	genService := service.NewGeneratorService()
	genHandler := handler.NewGeneratorHandler(genService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/v1/generate", genHandler.HandleGenerate)

	// Initialize DB-backed routes if the database is available.
	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed, vault routes disabled", "error", err)
	} else {
		defer db.Close()
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Warn("migrations not applied", "error", err)
		}
		if err := repository.NewSettingsRepository(db).EnsureCipherMode(ctx, fieldCipher.Mode()); err != nil {
			slog.Error("cipher mode check failed", "error", err)
			os.Exit(1)
		}

		userRepo := repository.NewUserRepository(db)
		vaultRepo := repository.NewVaultRepository(db)
		shareRepo := repository.NewShareRepository(db)

		authService := service.NewAuthService(userRepo, sessions, kdf, cfg.JWTSecret)
		vaultService := service.NewVaultService(vaultRepo, sessions, entryCodec)
		shareService := service.NewShareService(vaultRepo, shareRepo, sessions,
			sharing.NewEngine(entryCodec, kdf), cfg.ShareBaseURL, cfg.ShareMaxHours)

		authHandler := handler.NewAuthHandler(authService)
		vaultHandler := handler.NewVaultHandler(vaultService)
		shareHandler := handler.NewShareHandler(shareService)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/api/v1/auth/register", authHandler.HandleRegister)
			r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Get("/share/{uuid}/{token}", shareHandler.HandleRedeemShare)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))
			r.Get("/api/v1/auth/me", authHandler.HandleMe)
			r.Post("/api/v1/auth/logout", authHandler.HandleLogout)

			r.Get("/api/v1/vault", vaultHandler.HandleListEntries)
			r.Post("/api/v1/vault", vaultHandler.HandleCreateEntry)
			r.Get("/api/v1/vault/stats", vaultHandler.HandleStats)
			r.Get("/api/v1/vault/{entry_id}", vaultHandler.HandleGetEntry)
			r.Put("/api/v1/vault/{entry_id}", vaultHandler.HandleUpdateEntry)
			r.Delete("/api/v1/vault/{entry_id}", vaultHandler.HandleDeleteEntry)

			r.Post("/api/v1/vault/{entry_id}/share", shareHandler.HandleCreateShare)
			r.Get("/api/v1/vault/{entry_id}/shares", shareHandler.HandleListShares)
			r.Delete("/api/v1/shares/{uuid}", shareHandler.HandleRevokeShare)
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "cipher", fieldCipher.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
