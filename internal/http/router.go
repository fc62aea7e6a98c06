// Package httpapi wires the Gin engine: middleware, health and metrics
// endpoints, API docs and the recipe book routes.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. AccessLog (redacted)
//  4. Recovery
//  5. Body size limit and gzip
//  6. Metrics
//  7. Idempotency validator (before the limiter so replays bypass it)
//  8. Rate limiter per client/IP
//  9. CORS and security headers
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-recipe-book/docs"
	"github.com/tbourn/go-recipe-book/internal/config"
	"github.com/tbourn/go-recipe-book/internal/http/handlers"
	"github.com/tbourn/go-recipe-book/internal/http/middleware"
	"github.com/tbourn/go-recipe-book/internal/repo"
	"github.com/tbourn/go-recipe-book/internal/repository"
	"github.com/tbourn/go-recipe-book/internal/search"
	"github.com/tbourn/go-recipe-book/internal/services"
	"github.com/tbourn/go-recipe-book/internal/store"
)

// Backend is what the routes serve.
type Backend struct {
	DB       *gorm.DB
	Recipes  *store.Recipes
	Prefs    *store.Preferences
	Catalog  *search.Catalog
	Sessions *services.Sessions
}

// idempotencyShim stores Idempotency-Key results in the idempotency table.
type idempotencyShim struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idempotencyShim) Lookup(ctx context.Context, scope, key string, now time.Time) (int64, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rec.RecipeID, true, nil
}

func (s idempotencyShim) Remember(ctx context.Context, scope, key string, recipeID int64, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, scope, key, recipeID, status, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// recipesValidator changes whenever the recipe table does, including writes
// made before this process started.
func recipesValidator(s *store.Recipes) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		st, err := s.Stats(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(s.Version(), 36) + "-" +
			strconv.FormatInt(st.Count, 36) + "-" +
			strconv.FormatInt(st.MaxID, 36) + "-" +
			strconv.FormatInt(st.MaxLastUsed, 36), nil
	}
}

// RegisterRoutes attaches all middleware and endpoints to r.
func RegisterRoutes(r *gin.Engine, b Backend, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{middleware.HeaderClientID},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`.*/stream$`}),
	))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	idem := idempotencyShim{db: b.DB, ttl: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			_, found, err := idem.Lookup(ctx, scope, key, now)
			return found, err
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient())
	r.Use(rl.Handler())

	allowHeaders := []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderClientID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO: * even without an Origin header, for health checks.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    methods,
			AllowHeaders:    allowHeaders,
			ExposeHeaders:   exposeHeaders,
			MaxAge:          12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  methods,
			AllowHeaders:  allowHeaders,
			ExposeHeaders: exposeHeaders,
			MaxAge:        12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) {
		sqlDB, err := b.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			handlers.Fail(c, http.StatusServiceUnavailable, "not_ready", "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "ingredients": b.Catalog.Len()})
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Recipes:   repository.NewRecipeRepository(b.Recipes),
		Prefs:     repository.NewPreferencesRepository(b.Prefs),
		Catalog:   b.Catalog,
		Sessions:  b.Sessions,
		Idem:      idem,
		Validator: recipesValidator(b.Recipes),
		Limits: handlers.Limits{
			Search: cfg.Lists.Search,
			Home:   cfg.Lists.Home,
			Latest: cfg.Lists.Latest,
			Recent: cfg.Lists.Recent,
			Max:    cfg.Lists.Max,
		},
		EditOptions: []services.EditOption{services.WithDebounce(cfg.SearchDebounce)},
	})
	h.Register(groupWithPrefix(r, cfg.APIBasePath))
}

// limitBody caps request bodies at maxBytes.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
