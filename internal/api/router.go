package api

import (
	"context"
	"net/http"
	"time"

	"pantry-keeper/internal/api/handlers/health"
	pantryHandler "pantry-keeper/internal/api/handlers/pantry"
	recipeHandler "pantry-keeper/internal/api/handlers/recipe"
	"pantry-keeper/internal/api/middleware"
	"pantry-keeper/internal/core/extraction"
	"pantry-keeper/internal/core/gateway"
	pantryCore "pantry-keeper/internal/core/pantry"
	recipeCore "pantry-keeper/internal/core/recipe"
	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)
	maxBodySize = 10 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, gw gateway.Gateway, store *pantryCore.SnapshotStore, rec *pantryCore.Reconciler) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求去重
	router.Use(middleware.Deduplication(cfg))

	// 速率限制
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("extraction_enabled", cfg.Extraction.Enabled),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化食譜使用服務
	consumeService := recipeCore.NewConsumeService(cfg, gw, store)

	// 收據辨識服務（可選）
	var extractionService *extraction.Service
	if cfg.Extraction.Enabled {
		extractionService = extraction.NewService(cfg)
	}

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 設置配置與對帳引擎
		c.Set("config", cfg)
		c.Set("reconciler", rec)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		pantryHandlerInstance := pantryHandler.NewHandler(rec, gw, store)
		recipeHandlerInstance := recipeHandler.NewHandler(consumeService)

		// 儲藏室相關路由
		pantryGroup := api.Group("/pantry")
		{
			// 庫存快照與批次提交
			pantryGroup.GET("/items", pantryHandlerInstance.HandleListItems)
			pantryGroup.POST("/items", pantryHandlerInstance.HandleSubmitBatch)
			pantryGroup.PUT("/items/:id", pantryHandlerInstance.HandleUpdateItem)
			pantryGroup.DELETE("/items/:id", pantryHandlerInstance.HandleDeleteItem)
			pantryGroup.DELETE("/items", pantryHandlerInstance.HandleClearAll)

			// 重複衝突解決
			pantryGroup.POST("/resolve", pantryHandlerInstance.HandleResolve)
			pantryGroup.POST("/resolve/cancel", pantryHandlerInstance.HandleCancel)

			// 收據辨識
			pantryGroup.POST("/receipt", func(c *gin.Context) {
				pantryHandler.HandleReceiptExtraction(extractionService, rec)(c.Writer, c.Request)
			})
		}

		// 食譜使用路由
		recipeGroup := api.Group("/recipe")
		{
			recipeGroup.POST("/consume/preview", recipeHandlerInstance.HandlePreview)
			recipeGroup.POST("/consume", recipeHandlerInstance.HandleConsume)
			recipeGroup.POST("/availability", recipeHandlerInstance.HandleAvailability)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("extraction_enabled", extractionService != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
