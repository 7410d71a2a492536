package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"productif-agent/pkg/trace"
)

// NewLogger 创建 production logger，level 为空时使用 info
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace 从 context 中提取 trace_id 并添加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}

// WithUser 在 logger 上附加用户标识（只保留号码末四位）
func WithUser(logger *zap.Logger, userID string) *zap.Logger {
	return logger.With(zap.String("user", MaskUser(userID)))
}

// MaskUser 隐藏电话号码，日志里只出现末四位
func MaskUser(userID string) string {
	if len(userID) <= 4 {
		return "****"
	}
	return "****" + userID[len(userID)-4:]
}
