package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evconduit/internal/apikey"
	"evconduit/internal/config"
	"evconduit/internal/currency"
	"evconduit/internal/geoip"
	httpserver "evconduit/internal/http"
	"evconduit/internal/http/handlers"
	"evconduit/internal/http/middleware"
	"evconduit/internal/repository"
	"evconduit/internal/service"
	"evconduit/internal/ws"
	libdb "evconduit/libs/db"
	libredis "evconduit/libs/redis"
)

// App wires insights-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(sqlDB)
	keyRepo := repository.NewAPIKeyRepository(sqlDB)

	geoClient := geoip.NewClient(cfg.Geo.BaseURL, &http.Client{Timeout: cfg.Geo.Timeout})
	detector := currency.NewDetector(geoClient, currency.NewRedisStore(redisClient), cfg.Currency.CacheTTL, logger)
	converter := currency.NewConverter(logger)

	hub := ws.NewHub(cfg.WS.PingInterval, logger)
	insights := service.NewInsightsService(sessionRepo, detector, hub, logger)
	keys := apikey.NewService(keyRepo, apikey.NewBcryptHasher(0))

	wsServer := ws.NewServer(hub, func(r *http.Request) (int64, bool) {
		return middleware.UserIDFromContext(r.Context())
	}, 0, logger)

	routes := httpserver.Routes{
		SessionsMe:      handlers.NewSessionsMeHandler(insights),
		SessionGet:      handlers.NewSessionGetHandler(insights),
		SessionUpdate:   handlers.NewSessionUpdateHandler(insights, logger),
		StatsMe:         handlers.NewUserStatsHandler(insights),
		StatsGlobal:     handlers.NewGlobalStatsHandler(insights),
		Currencies:      handlers.NewCurrenciesHandler(),
		CurrencyDetect:  handlers.NewCurrencyDetectHandler(insights),
		CurrencyConvert: handlers.NewCurrencyConvertHandler(converter, insights),
		APIKeyCreate:    handlers.NewAPIKeyCreateHandler(keys, logger),
		Updates:         wsServer,
		Health:          handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, middleware.Auth(cfg.Auth.JWTSecret, keys))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the hub ping loop and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
