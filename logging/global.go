package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dopaplan/dopaplan-api/config"
)

// LoggingService owns the process logger and the file it writes to
type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Close releases the log file. It is safe to call on a console-only service
func (s *LoggingService) Close() error {
	if s == nil || s.rotating == nil {
		return nil
	}
	return s.rotating.Close()
}

var DefaultLoggingService *LoggingService

// Options configures InitLogger
type Options struct {
	Dir            string
	Env            config.Environment
	Level          string
	Verbose        bool
	RetentionWeeks int
	MaxFileSize    int64
}

// InitLogger builds the global logger: console text at the environment's
// level plus a weekly rotating JSON file at debug level. When the log
// directory cannot be used it falls back to console only
func InitLogger(opts Options) io.Closer {
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}

	DefaultLoggingService = newLoggingService(opts)
	slog.SetDefault(DefaultLoggingService.Logger)
	return DefaultLoggingService
}

// InitFromConfig is InitLogger with values taken from the loaded configuration
func InitFromConfig(cfg *config.Config) io.Closer {
	return InitLogger(Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
}

func newLoggingService(opts Options) *LoggingService {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory, logging to console only", "dir", opts.Dir, "error", err)
		return &LoggingService{Logger: logger}
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	rotating := NewRotatingLoggerWithSizeLimit(opts.Dir, retention, opts.MaxFileSize)

	rotating.mu.Lock()
	err := rotating.doRotate(getWeekKey(time.Now()))
	rotating.mu.Unlock()
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to open log file, logging to console only", "dir", opts.Dir, "error", err)
		return &LoggingService{Logger: logger}
	}
	rotating.startCleanup()

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return &LoggingService{
		Logger:   slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}),
		rotating: rotating,
	}
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. Tests stay quiet unless run
// verbosely and ignore LOG_LEVEL; other environments honour LOG_LEVEL and
// otherwise default to info (dev) or warn (staging, prod)
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is the level of the JSON file handler; the file keeps everything
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return nil
	}
	return DefaultLoggingService.Logger
}

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if l := current(); l != nil {
		l.Info(msg, args...)
		return
	}
	fallback(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	if l := current(); l != nil {
		l.Error(msg, args...)
		return
	}
	fallback(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if l := current(); l != nil {
		l.Warn(msg, args...)
		return
	}
	fallback(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if l := current(); l != nil {
		l.Debug(msg, args...)
		return
	}
	fallback(slog.LevelDebug).Debug(msg, args...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	Error(msg, args...)
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}
	os.Exit(1)
}
