package mylog

import (
	"adminctl/app/config"
	"adminctl/app/util/telemetry"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Preinit installs a console logger so that config loading errors are
// readable before Init runs.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

func Init(cfg *config.Config, tel *telemetry.Telemetry) error {
	level := parseLevel(cfg.Log.Level)

	handlers := []slog.Handler{
		console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:     level,
			AddSource: level == slog.LevelDebug,
		}),
	}

	if cfg.Log.Telegram.Token != "" && cfg.Log.Telegram.ChatID != "" {
		handlers = append(handlers, slogtelegram.Option{
			Level:    slog.LevelError,
			Token:    cfg.Log.Telegram.Token,
			Username: cfg.Log.Telegram.ChatID,
		}.NewTelegramHandler())
	}

	if cfg.Telemetry.Enabled && tel != nil {
		handlers = append(handlers, otelslog.NewHandler(cfg.Telemetry.ServiceName,
			otelslog.WithLoggerProvider(tel.LoggerProvider),
		))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
