package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seolhyebom/megaticket-sub001/internal/api"
	"github.com/seolhyebom/megaticket-sub001/internal/api/handler"
	apimiddleware "github.com/seolhyebom/megaticket-sub001/internal/api/middleware"
	"github.com/seolhyebom/megaticket-sub001/internal/application"
	"github.com/seolhyebom/megaticket-sub001/internal/config"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/performance"
	"github.com/seolhyebom/megaticket-sub001/internal/domain/reservation"
	"github.com/seolhyebom/megaticket-sub001/internal/infrastructure/memory"
	"github.com/seolhyebom/megaticket-sub001/internal/infrastructure/postgres"
	redisinfra "github.com/seolhyebom/megaticket-sub001/internal/infrastructure/redis"
	"github.com/seolhyebom/megaticket-sub001/internal/pkg/logger"
	"github.com/seolhyebom/megaticket-sub001/internal/pkg/metrics"
	"github.com/seolhyebom/megaticket-sub001/internal/queue"
	"github.com/seolhyebom/megaticket-sub001/internal/worker"
)

func main() {
	// .env があれば読み込む（なくてもよい）
	_ = godotenv.Load()

	cfg := config.Load()
	defer logger.Sync()

	m := metrics.Init()

	ctx := context.Background()

	// PostgreSQL（接続できない場合はインメモリ構成で起動する）
	var (
		reservationStore reservation.Store
		catalogRepo      performance.Repository
	)
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Warn("PostgreSQL接続失敗、インメモリストアで起動します", zap.Error(err))
		reservationStore = memory.NewReservationStore()
		catalogRepo = memory.NewPerformanceRepository()
	} else {
		defer db.Close()
		migrationsPath := os.Getenv("MIGRATIONS_PATH")
		if migrationsPath == "" {
			migrationsPath = "migrations"
		}
		if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
			logger.Fatal("マイグレーション失敗", zap.Error(err))
		}
		reservationStore = postgres.NewReservationStore(db)
		catalogRepo = postgres.NewPerformanceRepository(db)
		logger.Info("PostgreSQL接続完了")
	}

	// 仮押さえは有効期限つきの揮発データなのでインメモリが正
	holdStore := memory.NewHoldStore()

	// Redis（分散ロックと座席状態キャッシュ、接続できなければ単一プロセス動作）
	var (
		lockManager *redisinfra.LockManager
		statusCache *redisinfra.StatusCache
	)
	redisClient, err := redisinfra.NewClient(ctx, &redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続失敗、分散ロックとキャッシュを無効化します", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		statusCache = redisinfra.NewStatusCache(redisClient)
		logger.Info("Redis接続完了")
	}

	// RabbitMQ（予約確定イベント発行、URL未設定なら無効）
	var publisher application.EventPublisher
	if cfg.Queue.URL != "" {
		pub, err := queue.NewPublisher(cfg.Queue.URL)
		if err != nil {
			logger.Warn("RabbitMQ接続失敗、イベント発行を無効化します", zap.Error(err))
		} else {
			defer pub.Close()
			publisher = pub
			logger.Info("RabbitMQ接続完了")
		}
	}

	// サービス
	holdingService := application.NewHoldingService(
		holdStore, reservationStore, catalogRepo,
		lockManager, statusCache, publisher, m, cfg.Holding,
	)
	performanceService := application.NewPerformanceService(catalogRepo)

	// ハンドラー
	holdingHandler := handler.NewHoldingHandler(holdingService)
	reservationHandler := handler.NewReservationHandler(holdingService)
	performanceHandler := handler.NewPerformanceHandler(performanceService, holdingService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()),
		apimiddleware.MetricsBasicAuth(cfg.Metrics.User, cfg.Metrics.Password))

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/holdings", holdingHandler.Create)
	v1.DELETE("/holdings/:id", holdingHandler.Release)

	v1.POST("/reservations", reservationHandler.Confirm)
	v1.GET("/reservations", reservationHandler.GetUserReservations)

	v1.POST("/performances", performanceHandler.Create)
	v1.GET("/performances", performanceHandler.List)
	v1.GET("/performances/:id", performanceHandler.GetByID)
	v1.POST("/performances/:id/seats/bulk", performanceHandler.CreateBulkSeats)
	v1.GET("/performances/:performance_id/seat-status", performanceHandler.SeatStatus)

	// 期限切れ仮押さえのバックグラウンド掃除
	var sweeper *worker.ExpiredHoldSweeper
	if cfg.Holding.SweepInterval > 0 {
		sweeper = worker.NewExpiredHoldSweeper(holdingService, cfg.Holding.SweepInterval)
		go sweeper.Start(ctx)
	}

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
