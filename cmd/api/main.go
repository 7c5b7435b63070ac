package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/config"
	"github.com/MrJamesThe3rd/finstat/internal/database"
	"github.com/MrJamesThe3rd/finstat/internal/export"
	"github.com/MrJamesThe3rd/finstat/internal/graph"
	finstatHttp "github.com/MrJamesThe3rd/finstat/internal/http"
	apiHandler "github.com/MrJamesThe3rd/finstat/internal/http/api"
	"github.com/MrJamesThe3rd/finstat/internal/http/httpx"
	pageHandler "github.com/MrJamesThe3rd/finstat/internal/http/page"
	"github.com/MrJamesThe3rd/finstat/internal/logging"
	"github.com/MrJamesThe3rd/finstat/internal/session"
	"github.com/MrJamesThe3rd/finstat/internal/session/memory"
	sessionStore "github.com/MrJamesThe3rd/finstat/internal/session/store"
	"github.com/MrJamesThe3rd/finstat/internal/sheet"
	"github.com/MrJamesThe3rd/finstat/internal/web"
)

const purgeInterval = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, db, err := newSessionRepository(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up session store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}

	if db != nil {
		defer db.Close()
	}

	tokens, err := session.NewTokens(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		slog.Error("failed to set up session tokens", "error", err)
		os.Exit(1)
	}

	if cfg.Session.Secret == "" {
		slog.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	pages, err := web.New()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	var (
		renderer        = graph.NewRenderer(cfg.Storage.GraphDir, "graphs")
		analysisService = analysis.NewService(sheet.NewLoader(cfg.Sheet.Name), renderer, sessions, cfg.Storage.UploadDir)
		exportService   = export.NewService(renderer.Files)
		cookies         = httpx.NewSessions(tokens)
	)

	var (
		pageH = pageHandler.NewHandler(analysisService, cookies, pages, cfg.Upload.MaxBytes)
		apiH  = apiHandler.NewHandler(analysisService, exportService, cookies, cfg.Upload.MaxBytes)
	)

	router := finstatHttp.New(pageH, apiH, renderer.Dir(), cfg.CORS.Origins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "store", cfg.Session.Store)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newSessionRepository returns the configured store. The *sql.DB is nil for
// the memory store.
func newSessionRepository(ctx context.Context, cfg *config.Config) (session.Repository, *sql.DB, error) {
	if cfg.Session.Store == config.SessionStoreMemory {
		return memory.New(cfg.Session.MaxSize, cfg.Session.TTL), nil, nil
	}

	if err := sessionStore.Migrate(cfg.ConnectionString()); err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, err
	}

	st := sessionStore.New(db, cfg.Session.TTL)

	go purge(ctx, st)

	return st, db, nil
}

func purge(ctx context.Context, st *sessionStore.Store) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.Purge(ctx)
			if err != nil {
				slog.Error("failed to purge sessions", "error", err)
				continue
			}

			if n > 0 {
				slog.Debug("purged expired sessions", "count", n)
			}
		}
	}
}
