// Package logging provides structured logging for wikidex. It wraps zerolog
// with a process-global logger, per-component child loggers, and a console
// switch so TUI mode can silence terminal output while keeping file logs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config configures the logger behavior.
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // human-readable console output instead of JSON
	FilePath   string // optional file path for persistent logs
	WithCaller bool   // annotate entries with file:line of caller
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Pretty: true,
	}
}

// switchableWriter lets the console destination be swapped at runtime.
// TUI mode points it at io.Discard so log lines do not corrupt the
// alternate screen.
type switchableWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchableWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchableWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

var (
	global   zerolog.Logger
	globalMu sync.RWMutex

	console = &switchableWriter{w: os.Stderr}
	logFile *os.File
)

func init() {
	global = newLogger(DefaultConfig(), consoleOut(DefaultConfig()))
}

// Init configures the global logger. Call once at startup, after the
// configuration has been loaded.
func Init(cfg Config) error {
	console.set(os.Stderr)

	var out io.Writer = consoleOut(cfg)

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		out = zerolog.MultiLevelWriter(out, f)
	}

	SetGlobal(newLogger(cfg, out))
	return nil
}

// consoleOut returns the console destination, pretty-printed when requested.
func consoleOut(cfg Config) io.Writer {
	if cfg.Pretty {
		return zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}
	}
	return console
}

// newLogger builds a logger writing to out.
func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "wikidex").
		Logger()

	if cfg.WithCaller {
		l = l.With().Caller().Logger()
	}
	return l
}

// SetGlobal replaces the global logger instance.
func SetGlobal(l zerolog.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
	log.Logger = l
}

// Global returns the global logger instance.
func Global() zerolog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Component returns a child logger with the component field set.
func Component(name string) zerolog.Logger {
	return Global().With().Str("component", name).Logger()
}

// DisableConsoleOutput disables console output, logging only to file.
// This should be called when entering TUI mode.
func DisableConsoleOutput() {
	console.set(io.Discard)
}

// EnableConsoleOutput re-enables console output.
func EnableConsoleOutput() {
	console.set(os.Stderr)
}

// Close closes the log file if one is open.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Debug logs a debug message using the global logger.
func Debug() *zerolog.Event {
	l := Global()
	return l.Debug()
}

// Info logs an info message using the global logger.
func Info() *zerolog.Event {
	l := Global()
	return l.Info()
}

// Warn logs a warning message using the global logger.
func Warn() *zerolog.Event {
	l := Global()
	return l.Warn()
}

// Error logs an error message using the global logger.
func Error() *zerolog.Event {
	l := Global()
	return l.Error()
}

// Fatal logs a fatal message using the global logger and exits.
func Fatal() *zerolog.Event {
	l := Global()
	return l.Fatal()
}
