package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/client"
	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/db"
	"github.com/Aashish1107/TravelAgent/internal/handler"
	"github.com/Aashish1107/TravelAgent/internal/obs"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/Aashish1107/TravelAgent/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const sessionSweepInterval = 15 * time.Minute

// @title TravelAgent API
// @version 1.0
// @description Travel planning backend: accounts, trips, saved spots and weather.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		App:    "travelagent",
		Env:    cfg.Server.Env,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	database := db.NewPostgres(pool)

	if err := database.EnsureAuthSchema(ctx); err != nil {
		return err
	}
	if err := database.EnsureTravelSchema(ctx); err != nil {
		return err
	}

	store, closeStore, err := newSessionStore(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := session.NewManager(store, cfg.Session)
	if err != nil {
		return err
	}
	go sessions.RunSweeper(ctx, sessionSweepInterval, logger)

	tokens, err := service.NewTokenCodec(cfg.Auth)
	if err != nil {
		return err
	}
	cost, err := service.ParseBcryptCost(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	hasher, err := service.NewPasswordHasher(cost)
	if err != nil {
		return err
	}

	strategies := service.Strategies{
		service.StrategyLocal: service.NewLocalStrategy(database, hasher),
	}
	var google service.FederatedProvider
	if cfg.Google.Enabled() {
		provider, err := service.NewGoogleProvider(ctx, cfg.Google)
		if err != nil {
			return err
		}
		google = provider
		strategies[service.StrategyGoogle] = service.NewFederatedStrategy(database)
	} else {
		logger.Info("google login disabled: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}

	authSvc := service.NewAuthService(database, tokens, hasher, strategies, logger)
	tripSvc := service.NewTripService(database)
	spotSvc := service.NewSpotService(database)
	agentClient := client.NewAgentClient(cfg.Agent)
	weatherSvc := service.NewWeatherService(agentClient, logger)
	searchSvc := service.NewSearchService(database, agentClient, logger)
	agentSvc := service.NewAgentService(database, agentClient, logger)

	authHandler := handler.NewAuthHandler(authSvc, sessions, logger)
	tripHandler := handler.NewTripHandler(tripSvc, logger)
	spotHandler := handler.NewSpotHandler(spotSvc, logger)
	weatherHandler := handler.NewWeatherHandler(weatherSvc, logger)
	searchHandler := handler.NewSearchHandler(searchSvc, logger)
	agentHandler := handler.NewAgentHandler(agentSvc, logger)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		handler.RequestLogger(logger),
		handler.CORSMiddleware(cfg.Server.AllowedOrigins, true),
	)

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(obs.MetricsHandler()))

	requireAuth := handler.RequireAuth(authSvc)
	optionalAuth := handler.OptionalAuth(authSvc)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/user", requireAuth, authHandler.Me)
		if google != nil {
			oauthHandler := handler.NewOAuthHandler(authSvc, google, sessions, cfg.Server.FrontendURL, logger)
			auth.GET("/google", oauthHandler.Start)
			auth.GET("/google/callback", oauthHandler.Callback)
		}
	}

	trips := router.Group("/api/trips", requireAuth)
	{
		trips.POST("", tripHandler.CreateTrip)
		trips.GET("", tripHandler.ListTrips)
		trips.PUT("/:id", tripHandler.UpdateTrip)
		trips.DELETE("/:id", tripHandler.DeleteTrip)
	}

	spots := router.Group("/api/spots", requireAuth)
	{
		spots.POST("/save", spotHandler.SaveSpot)
		spots.GET("/saved", spotHandler.ListSavedSpots)
		spots.DELETE("/:id", spotHandler.RemoveSavedSpot)
	}

	search := router.Group("/api/search", requireAuth)
	{
		search.POST("/location", searchHandler.SearchLocation)
		search.GET("/history", searchHandler.SearchHistory)
	}

	agents := router.Group("/api/agents", requireAuth)
	{
		agents.POST("/message", agentHandler.SendMessage)
		agents.GET("/conversations", agentHandler.ListConversations)
	}

	router.GET("/api/weather/:location", optionalAuth, weatherHandler.GetWeather)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shCtx)
}

// newSessionStore picks the backend named by SESSION_STORE.
func newSessionStore(ctx context.Context, cfg config.Config, database *db.Postgres) (session.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Session.Store)) {
	case "", "postgres":
		if err := database.EnsureSessionSchema(ctx); err != nil {
			return nil, nil, err
		}
		return session.NewPostgresStore(database), func() {}, nil
	case "redis":
		store, err := session.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return session.NewMemoryStore(time.Minute), func() {}, nil
	default:
		return nil, nil, errors.New("unknown SESSION_STORE " + cfg.Session.Store + " (want postgres, redis or memory)")
	}
}
