// Package logger 提供整個系統共用的結構化日誌介面 (zap)。
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 是各元件使用的日誌介面
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field 即 zap.Field
type Field = zap.Field

// Config 為日誌設定
type Config struct {
	Level       string   `mapstructure:"level"`
	Development bool     `mapstructure:"development"`
	OutputPaths []string `mapstructure:"outputPaths"`
}

type zapLogger struct {
	logger *zap.Logger
}

// New 依設定建立 zap 日誌實例
func New(cfg Config) (Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("建立 zap 日誌失敗: %w", err)
	}
	return &zapLogger{logger: z}, nil
}

// Must 建立日誌，失敗時直接結束程式
func Must(cfg Config) Logger {
	l, err := New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "錯誤：無法建立日誌: %v\n", err)
		os.Exit(1)
	}
	return l
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.logger.Fatal(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// String 建立字串欄位
func String(key, val string) Field { return zap.String(key, val) }

// Int 建立整數欄位
func Int(key string, val int) Field { return zap.Int(key, val) }

// Int64 建立 int64 欄位
func Int64(key string, val int64) Field { return zap.Int64(key, val) }

// Float64 建立浮點數欄位
func Float64(key string, val float64) Field { return zap.Float64(key, val) }

// Bool 建立布林欄位
func Bool(key string, val bool) Field { return zap.Bool(key, val) }

// Duration 建立時間長度欄位
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Error 建立 key 為 "error" 的錯誤欄位
func Error(err error) Field { return zap.Error(err) }

// Strings 建立字串陣列欄位
func Strings(key string, val []string) Field { return zap.Strings(key, val) }

// Any 建立任意值欄位
func Any(key string, val any) Field { return zap.Any(key, val) }
