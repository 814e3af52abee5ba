package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger 根据日志配置装配 zap.Logger。每个配置项直接映射到
// zapcore 的一个决策: 格式决定编码器，输出路径决定 sink，
// caller/stacktrace 决定附加选项。未指定输出路径时写入 stderr。
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(orDefault(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	switch orDefault(cfg.Format, "json") {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	paths := cfg.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	sink, _, err := zap.Open(paths...)
	if err != nil {
		return nil, fmt.Errorf("open log outputs: %w", err)
	}

	opts := []zap.Option{zap.ErrorOutput(sink)}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, opts...), nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
