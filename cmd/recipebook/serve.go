package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-book/internal/config"
	httpapi "github.com/tbourn/go-recipe-book/internal/http"
	"github.com/tbourn/go-recipe-book/internal/observability"
	"github.com/tbourn/go-recipe-book/internal/repo"
	"github.com/tbourn/go-recipe-book/internal/search"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/store"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, buildVersion())
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	catalog, err := search.LoadCatalog(search.WithFile(cfg.IngredientsPath))
	if err != nil {
		return err
	}
	sessions := services.NewSessions(cfg.EditSessionTTL)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Backend{
		DB:       db,
		Recipes:  store.NewRecipes(db),
		Prefs:    store.NewPreferences(db),
		Catalog:  catalog,
		Sessions: sessions,
	}, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Int("ingredients", catalog.Len()).
			Str("version", buildVersion()).
			Msg("recipe book listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		runJanitor(gctx, db, sessions, cfg.EditSessionTTL/2)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		err := srv.Shutdown(sctx)
		sessions.CloseAll(sctx)
		return err
	})
	return g.Wait()
}

func openDB(path string) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// runJanitor exits idle editor sessions and purges expired idempotency keys
// every interval until ctx is done.
func runJanitor(ctx context.Context, db *gorm.DB, sessions *services.Sessions, every time.Duration) {
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := sessions.Sweep(ctx); n > 0 {
				log.Info().Int("sessions", n).Msg("idle edit sessions closed")
			}
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency keys")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("expired idempotency keys purged")
			}
		}
	}
}
