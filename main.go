package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/auth"
	"github.com/umesh2702/OUTLAW/config"
	"github.com/umesh2702/OUTLAW/database"
	"github.com/umesh2702/OUTLAW/kafka"
	"github.com/umesh2702/OUTLAW/logger"
	aws_pkg "github.com/umesh2702/OUTLAW/pkg/aws"
	"github.com/umesh2702/OUTLAW/provider"
	"github.com/umesh2702/OUTLAW/repository"
	"github.com/umesh2702/OUTLAW/routes"
	"github.com/umesh2702/OUTLAW/services"
	"github.com/umesh2702/OUTLAW/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("redis connection failed", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}

	kv := storage.NewRedis(redisClient, cfg.CartTTL)
	sessionKV := storage.NewRedis(redisClient, cfg.SessionTTL)
	providerClient := provider.NewClient(cfg.ProviderURL, cfg.ProviderKey, 10*time.Second)
	sessions := auth.NewSessionStore(sessionKV)
	events := auth.NewPublisher(redisClient, logger.Log)
	checkout := kafka.NewProducer(cfg.KafkaBrokers, cfg.CheckoutTopic)
	defer checkout.Close()

	var notifier *services.UserEventsPublisher
	if cfg.UserEventsTopicARN != "" {
		awsCfg, err := aws_pkg.LoadConfig(context.Background())
		if err != nil {
			logger.Log.Warn("aws config load failed, user events disabled", zap.Error(err))
		} else {
			notifier = services.NewUserEventsPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.UserEventsTopicARN, logger.Log)
		}
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	deps := routes.Deps{
		DB:          db,
		KV:          kv,
		SessionKV:   sessionKV,
		Provider:    providerClient,
		Sessions:    sessions,
		Events:      events,
		Checkout:    checkout,
		JWTSecret:   cfg.ProviderJWTSecret,
		RedirectURL: cfg.SignupRedirectURL,
		Log:         logger.Log,
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	routes.Register(router, deps)

	// Session change feed: reconcile the affected session's shadow whenever
	// a login/logout happens in another process.
	subCtx, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()
	profiles := repository.NewProfileRepository(db)
	subscriber := auth.NewSubscriber(redisClient, logger.Log)
	go subscriber.Run(subCtx, func(ctx context.Context, ev auth.SessionEvent) {
		source := auth.NewProviderSource(providerClient, sessions, ev.SessionID)
		shadow := auth.NewSessionShadow(sessionKV, ev.SessionID, source, profiles, logger.Log)
		shadow.OnSessionEvent(ctx)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("storefront service running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	logger.Log.Info("server shutdown complete")
}
