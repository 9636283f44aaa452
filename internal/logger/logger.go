package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "bpipulse"

var (
	mu   sync.RWMutex
	base zerolog.Logger
	out  io.Writer = os.Stdout
)

// Init configures the global JSON logger.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
func Init() {
	level := parseLevel(getenv("LOG_LEVEL", "info"))
	pretty := strings.EqualFold(getenv("LOG_PRETTY", "false"), "true")

	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger().Level(level)
}

// SetOutput redirects the global logger to w and re-initializes it.
// Tests use it to capture log lines; production keeps stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
	Init()
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	mu.RLock()
	initialized := base.GetLevel() != zerolog.NoLevel
	mu.RUnlock()
	if !initialized {
		Init()
	}

	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// Component returns a child logger tagged with component=name.
func Component(name string) *zerolog.Logger {
	l := L().With().Str("component", name).Logger()
	return &l
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
