// Package main 是应用程序的入口点。
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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"ui-guide-go/internal/config"
	"ui-guide-go/internal/handler"
	"ui-guide-go/internal/repository"
	"ui-guide-go/internal/service"
	"ui-guide-go/pkg/assistant"
	"ui-guide-go/pkg/database"
	"ui-guide-go/pkg/kafka"
	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/storage"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// 1. 初始化配置
	configPath := os.Getenv("UIGUIDE_CONFIG")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化本地存储
	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatal("存储初始化失败", err)
	}
	store := repository.NewStore(backend)
	defer store.Close()

	// 4. 初始化 Service (依赖注入)
	client := assistant.NewClient(cfg.Assistant)
	tracker := assistant.NewTracker()

	conversationService := service.NewConversationService(ctx, repository.NewConversationRepository(store))
	guideService := service.NewGuideService(ctx, repository.NewGuideRepository(store))
	preferenceService := service.NewPreferenceService(ctx, repository.NewPreferenceRepository(store))

	var publisher service.FeedbackPublisher = service.LogFeedbackPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
	}

	// 未启用 MinIO 时保持接口为 nil，导出服务据此拒绝归档
	var archiver service.Archiver
	if cfg.MinIO.Enabled {
		a, err := storage.NewArchiver(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("MinIO 初始化失败", err)
		}
		archiver = a
	}

	monitor := service.NewStatusMonitor(client, cfg.Assistant.HealthInterval())

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.Services{
		Conversations: conversationService,
		Guides:        guideService,
		Preferences:   preferenceService,
		Chat:          service.NewChatService(client, conversationService, preferenceService, tracker),
		Guidance:      service.NewGuidanceService(client, guideService, preferenceService, tracker, publisher),
		Exports:       service.NewExportService(conversationService, guideService, archiver),
		Monitor:       monitor,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	// 6. 启动 HTTP 服务器与健康检查，收到信号后优雅停机
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务监听失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("接收到停机信号，正在关闭服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("服务异常退出", err)
		return
	}
	log.Info("服务已优雅关闭")
}

// openBackend 按配置选择键值存储。
func openBackend(cfg config.Config) (repository.Backend, error) {
	switch cfg.Store.Driver {
	case "", "bolt":
		if err := database.InitBolt(cfg.Store.BoltPath); err != nil {
			return nil, err
		}
		return repository.NewBoltBackend(database.BoltDB)
	case "redis":
		if err := database.InitRedis(cfg.Database.Redis); err != nil {
			return nil, err
		}
		return repository.NewRedisBackend(database.RDB), nil
	case "mysql":
		if err := database.InitMySQL(cfg.Database.MySQL.DSN); err != nil {
			return nil, err
		}
		return repository.NewGormBackend(database.DB)
	case "memory":
		log.Warnf("使用内存存储，重启后数据将丢失")
		return repository.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
