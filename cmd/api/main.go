// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/trial-reports/internal/auth"
	"github.com/yourusername/trial-reports/internal/config"
	"github.com/yourusername/trial-reports/internal/exports"
	"github.com/yourusername/trial-reports/internal/logging"
	"github.com/yourusername/trial-reports/internal/pdf"
	"github.com/yourusername/trial-reports/internal/records"
	"github.com/yourusername/trial-reports/internal/report"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		logger := logging.Setup(logging.Config{Level: "info"})
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-CSRF-Token",
	}
	// フロントエンドが CSRF トークンとエクスポートIDを読み取れるように公開
	corsConfig.ExposeHeaders = []string{"X-CSRF-Token", "X-Export-Id"}
	router.Use(cors.New(corsConfig))

	// 臨床レコードストアの初期化
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create postgres pool")
	}
	defer pool.Close()

	recordStore := records.NewStore(pool)
	recordStore.Register(records.DeathReportLabel, records.FetchDeathReport)

	// レポート定義の登録
	registry := report.NewRegistry()
	if err := report.RegisterDeathReport(registry); err != nil {
		logger.Fatal().Err(err).Msg("failed to register report descriptors")
	}

	renderer := report.NewRenderer(cfg.Institution)

	// 受領記録ストア（Redis）の初期化
	receipts, err := setupExports(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to setup export receipt store")
	}

	service := pdf.NewService(cfg, recordStore, registry, renderer, receipts)

	// ルーティングの設定
	setupRoutes(router, cfg, service, receipts)

	// サーバーの起動
	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("mode", cfg.GinMode).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "trial-reports-api",
		"version": "0.1.0",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, service *pdf.Service, receipts *exports.Store) {
	// 誰でも叩けるヘルスチェックとメトリクス
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authManager := auth.NewManager(cfg)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// ログイン時はセッション未生成なので CSRF 検証は不要
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/logout",
				authManager.RequireLogin(),
				authManager.VerifyCSRF(),
				authManager.Logout,
			)
		}

		protected := api.Group("")
		protected.Use(authManager.RequireLogin(), authManager.VerifyCSRF())
		{
			reports := protected.Group("/reports/:app/:model")
			{
				reports.POST("/select", pdf.SelectHandler())

				// 中間確認ページ由来の phrase は POST で受け取る
				printHandler := pdf.PrintHandler(service, pdf.PrintHandlerOptions{})
				reports.GET("/print", printHandler)
				reports.POST("/print", printHandler)
			}

			protected.GET("/messages", pdf.MessagesHandler())
			protected.GET("/exports/:id", pdf.ExportReceiptHandler(receipts))
		}
	}
}
