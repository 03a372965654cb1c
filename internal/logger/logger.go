package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger

// Init builds the process-wide logger. Called once from main; packages
// that log before Init (tests, mostly) get a no-op logger.
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

func Info(msg string, fields map[string]any) {
	ensure()
	log.Infow(msg, kv(fields)...)
}

func Warn(msg string, fields map[string]any) {
	ensure()
	log.Warnw(msg, kv(fields)...)
}

func Error(msg string, fields map[string]any) {
	ensure()
	log.Errorw(msg, kv(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	ensure()
	log.Errorw(msg, kv(fields)...)
	_ = log.Sync()
	os.Exit(1)
}

func ensure() {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
}

func kv(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
