package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finora/internal/config"
	"finora/internal/handlers"
	"finora/internal/learning"
	"finora/internal/logger"
	"finora/internal/session"
	"finora/internal/storage"

	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Development(), logger.ParseLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Get()

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapAdmin(ctx, db, cfg); err != nil {
		return err
	}

	lessons, err := learning.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}

	h := handlers.NewHandlers(db, session.NewManager(db, cfg.SessionDuration), lessons, cfg.SecureCookie)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanSessions(ctx, db)

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("db", cfg.DBPath))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupRouter registers every route. Routes other than the sign in flow
// require a session.
func setupRouter(h *handlers.Handlers) http.Handler {
	mux := http.NewServeMux()
	auth := func(f http.HandlerFunc) http.Handler { return h.AuthMiddleware(f) }

	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)

	mux.Handle("GET /api/dashboard", auth(h.Dashboard))
	mux.Handle("GET /api/statistics", auth(h.Statistics))
	mux.Handle("GET /api/categories", auth(h.Categories))

	mux.Handle("GET /api/transactions", auth(h.ListTransactions))
	mux.Handle("POST /api/transactions", auth(h.CreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", auth(h.UpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", auth(h.DeleteTransaction))

	mux.Handle("GET /api/budget", auth(h.GetBudget))
	mux.Handle("PUT /api/budget", auth(h.SetBudget))

	mux.Handle("GET /api/debts", auth(h.ListDebts))
	mux.Handle("POST /api/debts", auth(h.CreateDebt))
	mux.Handle("GET /api/debts/{id}", auth(h.GetDebt))
	mux.Handle("PUT /api/debts/{id}", auth(h.UpdateDebt))
	mux.Handle("DELETE /api/debts/{id}", auth(h.DeleteDebt))
	mux.Handle("POST /api/debts/{id}/payments", auth(h.RecordDebtPayment))

	mux.Handle("GET /api/goals", auth(h.ListGoals))
	mux.Handle("POST /api/goals", auth(h.CreateGoal))
	mux.Handle("GET /api/goals/{id}", auth(h.GetGoal))
	mux.Handle("PUT /api/goals/{id}", auth(h.UpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", auth(h.DeleteGoal))
	mux.Handle("POST /api/goals/{id}/contributions", auth(h.ContributeToGoal))

	mux.Handle("GET /api/lessons", auth(h.ListLessons))
	mux.Handle("POST /api/lessons/{id}/quiz", auth(h.SubmitQuiz))
	mux.Handle("GET /api/progress", auth(h.GetProgress))

	mux.Handle("GET /api/profile", auth(h.GetProfile))
	mux.Handle("PUT /api/profile", auth(h.UpdateProfile))
	mux.Handle("DELETE /api/profile", auth(h.DeleteAccount))
	mux.Handle("POST /api/profile/password", auth(h.ChangePassword))

	return handlers.LoggingMiddleware(mux)
}

// bootstrapAdmin creates the account named by ADMIN_EMAIL/ADMIN_PASSWORD if
// it does not exist yet.
func bootstrapAdmin(ctx context.Context, db *storage.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := db.GetUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}
	user, err := db.Register(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	logger.Get().Info("created admin user", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func cleanSessions(ctx context.Context, db *storage.DB) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		n, err := db.CleanExpiredSessions(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Get().Warn("failed to clean expired sessions", zap.Error(err))
		} else if n > 0 {
			logger.Get().Info("cleaned expired sessions", zap.Int64("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
