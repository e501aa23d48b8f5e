package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Options configures the process-wide log sink
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // json, pretty
	Dir     string // empty disables the rotating file sink
	Service string
	Quiet   bool // drop the console sink, e.g. while a terminal UI owns the screen
}

// -----------------------------------------------------------------------------

// Init installs the global zerolog logger shared by every named Logger
func Init(opts Options) error {
	if opts.Level == "" {
		opts.Level = "info"
	}
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	switch {
	case opts.Quiet:
	case opts.Format == "pretty":
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	default:
		writers = append(writers, os.Stderr)
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "watchlist.log"),
			MaxSize:    50, // MB
			MaxAge:     14, // days
			MaxBackups: 5,
			Compress:   true,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", opts.Service).
		Logger()
	return nil
}

// -----------------------------------------------------------------------------

// Logger provides named printf-style logging on top of the global sink
type Logger struct {
	name string
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

// -----------------------------------------------------------------------------

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	return log.Logger.WithLevel(level).Str("component", l.name)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.event(zerolog.DebugLevel).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.event(zerolog.WarnLevel).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.event(zerolog.InfoLevel).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.event(zerolog.ErrorLevel).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.event(zerolog.FatalLevel).Msgf(format, args...)
	os.Exit(1)
}
