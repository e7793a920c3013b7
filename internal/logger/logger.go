package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger

func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(Logger)
}

func l() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

func Info(msg string, args ...any) {
	l().Info(msg, args...)
}

func Error(msg string, args ...any) {
	l().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	l().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	l().Warn(msg, args...)
}
