// Package logging は zerolog による構造化ログの初期化を提供します。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config はロガーの設定を保持します。
type Config struct {
	Level  string    // 最小出力レベル (debug, info, warn, error)
	Pretty bool      // コンソール向けの整形出力（デフォルトはJSON）
	Output io.Writer // 出力先（デフォルトは os.Stderr）
}

// Setup はグローバルの zerolog ロガーを構成して返します。
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// NewLogger はコンポーネント名付きのロガーを返します。
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
