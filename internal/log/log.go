// Package log is the process-wide leveled logger. Call sites pass a message
// and alternating key/value pairs; output is zerolog console or JSON.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Options configures the root logger.
type Options struct {
	Level  Level
	Format string // "console" (default) or "json"
	Writer io.Writer
}

var (
	root     atomic.Pointer[zerolog.Logger]
	rootOnce sync.Once
)

// Init replaces the root logger. It may be called again, e.g. after the
// config file has been read.
func Init(opt Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if !strings.EqualFold(opt.Format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opt.Writer != nil}
	}

	l := zerolog.New(w).Level(toZerolog(opt.Level)).With().Timestamp().Logger()
	root.Store(&l)
}

func get() *zerolog.Logger {
	rootOnce.Do(func() {
		if root.Load() == nil {
			Init(Options{Level: LevelInfo})
		}
	})
	return root.Load()
}

// SetLevel changes the minimum level of the current root logger.
func SetLevel(l Level) {
	lg := get().Level(toZerolog(l))
	root.Store(&lg)
}

// ParseLevel maps a config string to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debug(msg string, kv ...any) {
	get().Debug().Fields(pairs(kv)).Msg(msg)
}

func Info(msg string, kv ...any) {
	get().Info().Fields(pairs(kv)).Msg(msg)
}

func Warn(msg string, kv ...any) {
	get().Warn().Fields(pairs(kv)).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	get().Error().Err(err).Fields(pairs(kv)).Msg(msg)
}

// pairs drops a trailing key without a value and any non-string key.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}
