package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log *zap.Logger
	mu  sync.Mutex
)

// Init builds the global zap logger for env. "production" logs JSON to stderr,
// anything else uses the colored development console.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	log = build(env, false)
}

func build(env string, debug bool) *zap.Logger {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// stdout carries the CLI's JSON output.
	cfg.OutputPaths = []string{"stderr"}

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l
}

// SetDebug raises the global logger to debug level, used by verbose transports.
func SetDebug(env string) {
	mu.Lock()
	defer mu.Unlock()
	log = build(env, true)
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := log
	log = l
	return func() {
		mu.Lock()
		defer mu.Unlock()
		log = prev
	}
}

// L returns the global logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = build(os.Getenv("APP_ENV"), false)
	}
	return log
}

// Sync flushes logs.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
