package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"clickservice/internal/cache"
	"clickservice/internal/config"
	"clickservice/internal/metrics"
	"clickservice/internal/middleware"
	"clickservice/internal/modules/availability"
	"clickservice/internal/modules/catalog"
	"clickservice/internal/modules/lifecycle"
	"clickservice/internal/modules/professional"
	"clickservice/internal/modules/reputation"
	"clickservice/internal/pkg/jwt"
	"clickservice/internal/pkg/response"
	"clickservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the router is built from.
type Deps struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB
	// Cache may be nil; catalog reads then always hit the database.
	Cache cache.CatalogCache
	// Registry may be nil; a fresh one is created.
	Registry *prometheus.Registry
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg)

	store := repository.NewStore(d.DB)
	jwtService := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	catalogService := catalog.NewService(store.Services, store.Requests, d.Cache, d.Log.With(slog.String("module", "catalog")))
	professionalService := professional.NewService(
		store.Professionals,
		store.Services,
		professional.StoreTransactor(store),
		cfg.Directory.PhoneRegion,
		d.Log.With(slog.String("module", "professional")),
	)
	ledger := availability.NewService(store, m, d.Log.With(slog.String("module", "availability")))
	reputationService := reputation.NewService(store, m, d.Log.With(slog.String("module", "reputation")))
	lifecycleService := lifecycle.NewService(store, ledger, reputationService, m, d.Log.With(slog.String("module", "lifecycle")))

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(cfg.Server.CORSAllowedOrigins),
		middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware(),
		middleware.Metrics(m),
	)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))

	catalog.NewHandler(catalogService).RegisterRoutes(v1, protected)
	professional.NewHandler(professionalService).RegisterRoutes(v1, protected)
	availability.NewHandler(ledger).RegisterRoutes(v1, protected)
	reputation.NewHandler(reputationService).RegisterRoutes(v1, protected)
	lifecycle.NewHandler(lifecycleService).RegisterRoutes(protected)

	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
