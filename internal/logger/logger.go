package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 是全局的结构化日志实例，级别由 MOLELOG_LOG_LEVEL 控制。
var Logger = newLogger()

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(currentLogLevel())
	built, _ := config.Build(zap.AddCallerSkip(1))
	return built
}

func currentLogLevel() zapcore.Level {
	logLevel, _ := os.LookupEnv("MOLELOG_LOG_LEVEL")
	switch strings.ToLower(logLevel) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warning", "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync 刷新缓冲中的日志，进程退出前调用。
func Sync() {
	_ = Logger.Sync()
}
