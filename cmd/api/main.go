package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry-keeper/internal/api"
	"pantry-keeper/internal/core/gateway"
	"pantry-keeper/internal/core/pantry"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	// 使用 logger 記錄啟動信息
	common.LogInfo("載入設定",
		zap.String("gateway_base_url", cfg.Gateway.BaseURL),
		zap.Bool("extraction_enabled", cfg.Extraction.Enabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// 初始化 Persistence Gateway（含可選的 Redis 快取層）
	cachedGateway, err := gateway.NewCachedGateway(cfg, gateway.NewHTTPGateway(cfg))
	if err != nil {
		common.LogFatal("Failed to initialize persistence gateway", zap.Error(err))
	}
	defer cachedGateway.Close()

	// 初始化本地快照與對帳引擎
	store := pantry.NewSnapshotStore()
	reconciler := pantry.NewReconciler(cfg, cachedGateway, store)

	// 啟動時載入庫存快照；失敗不中止，快照可之後再補
	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout)
		if err := reconciler.RefreshSnapshot(ctx); err != nil {
			common.LogWarn("啟動時載入庫存快照失敗", zap.Error(err))
		}
		cancel()
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, cachedGateway, store, reconciler)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
