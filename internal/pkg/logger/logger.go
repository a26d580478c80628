package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerKey string

const key loggerKey = "contextLogger"

// ToContext помещает logger в контекст
func ToContext(ctx context.Context, sugarLogger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, key, sugarLogger)
}

// Infof ...
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// Errorf ...
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}

var defaultSugarLogger = zap.NewNop().Sugar()

// FromContext извлекает logger из контекста
func FromContext(ctx context.Context) *zap.SugaredLogger {
	sugarLogger, ok := lookup(ctx)
	if !ok {
		return defaultSugarLogger
	}

	return sugarLogger
}

// InContext проверяет, что в контексте уже есть logger
func InContext(ctx context.Context) bool {
	_, ok := lookup(ctx)
	return ok
}

func lookup(ctx context.Context) (*zap.SugaredLogger, bool) {
	sugarLogger, ok := ctx.Value(key).(*zap.SugaredLogger)
	return sugarLogger, ok && sugarLogger != nil
}

// Config настройки логгера.
type Config struct {
	Level string `yaml:"level"`
	// File путь к файлу лога с ротацией; пустое значение означает только stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// New создает logger по конфигурации.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("failed to parse log level %q: %w", cfg.Level, err)
		}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize == 0 {
			maxSize = 100
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar(), nil
}
