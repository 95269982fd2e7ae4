// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// アプリケーション設定
	AppUsername     string // ログイン用ユーザー名
	AppPasswordHash string // bcryptでハッシュ化されたパスワード
	SessionSecret   string // セッション署名用の秘密鍵

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データストア設定
	DatabaseURL    string // 臨床レコード検索用のPostgres接続URL
	ExportRedisURL string // エクスポート受領記録用のRedis接続URL

	// レポート設定
	Institution         string // レポートヘッダーに印字する施設名
	WorkDir             string // 結合・暗号化作業用ディレクトリ（空なら os.TempDir）
	ExportExpireMinutes int    // 作業ディレクトリと受領記録の有効期限（分）
	MaxRecordsPerExport int    // 1回のエクスポートで許可するレコード数の上限

	// ログ設定
	LogLevel  string // zerologの最小出力レベル (debug, info, warn, error)
	LogPretty bool   // コンソール向けの整形出力を有効にするか
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		AppUsername:     getEnv("APP_USERNAME", ""),
		AppPasswordHash: getEnv("APP_PASSWORD_HASH", ""),
		SessionSecret:   getEnv("SESSION_SECRET", ""),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/trial_reports?sslmode=disable"),
		ExportRedisURL: getEnv("EXPORT_REDIS_URL", "redis://127.0.0.1:6379/0"),

		Institution:         getEnv("INSTITUTION", "Clinical Trials Unit"),
		WorkDir:             getEnv("WORK_DIR", ""),
		ExportExpireMinutes: getEnvAsInt("EXPORT_EXPIRE_MINUTES", 10),
		MaxRecordsPerExport: getEnvAsInt("MAX_RECORDS_PER_EXPORT", 100),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では認証設定は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.AppUsername == "" {
			return fmt.Errorf("APP_USERNAME is required in release mode")
		}
		if c.AppPasswordHash == "" {
			return fmt.Errorf("APP_PASSWORD_HASH is required in release mode")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in release mode")
		}
		if c.ExportRedisURL == "" {
			return fmt.Errorf("EXPORT_REDIS_URL is required in release mode")
		}
	}

	if c.MaxRecordsPerExport <= 0 {
		return fmt.Errorf("MAX_RECORDS_PER_EXPORT must be positive")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
