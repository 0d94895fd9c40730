package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

// Logger is a thin printf-style facade over slog with module tags. Console
// output is colored, file output is plain text.
type Logger struct {
	slogger *slog.Logger
	file    *os.File
	closed  sync.Once
}

const (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

var tagColors = map[string]string{
	"BOOT":    "\x1b[96m",
	"HTTP":    "\x1b[95m",
	"VISION":  "\x1b[34m",
	"IMAGE":   "\x1b[36m",
	"EXPORT":  "\x1b[92m",
	"SESSION": "\x1b[94m",
	"STORE":   "\x1b[35m",
}

// consoleHandler renders records as "time LEVEL message", colorizing the level
// and any leading [TAG] prefix.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr, levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelStr, levelColor = "DEBUG", colorDebug
	case slog.LevelWarn:
		levelStr, levelColor = "WARN", colorWarn
	case slog.LevelError:
		levelStr, levelColor = "ERROR", colorError
	default:
		levelStr, levelColor = "INFO", colorInfo
	}

	msg := r.Message
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "]"); end > 0 {
			tag := msg[1:end]
			if color, ok := tagColors[tag]; ok {
				msg = color + msg[:end+1] + colorReset + msg[end+1:]
			}
		}
	}

	_, err := fmt.Fprintf(h.writer, "%s%s%s %s%-5s%s %s\n",
		colorTime, timeStr, colorReset,
		levelColor, levelStr, colorReset,
		msg,
	)
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(string) slog.Handler      { return h }

// fileHandler writes plain records without escape sequences.
type fileHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *fileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *fileHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.writer, "%s %s %s\n",
		r.Time.Format("2006-01-02 15:04:05.000"), r.Level.String(), r.Message)
	return err
}

func (h *fileHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *fileHandler) WithGroup(string) slog.Handler      { return h }

type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs([]slog.Attr) slog.Handler { return t }
func (t *teeHandler) WithGroup(string) slog.Handler      { return t }

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New builds a logger writing colored output to stdout and, when cfg.Dir is
// set, plain output to a log file inside it.
func New(cfg Config) (*Logger, error) {
	level := ParseLevel(cfg.Level)

	handlers := []slog.Handler{
		&consoleHandler{writer: os.Stdout, level: level},
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		filename := cfg.Filename
		if filename == "" {
			filename = fmt.Sprintf("server_%s.log", time.Now().Format("20060102"))
		}
		f, err := os.OpenFile(filepath.Join(cfg.Dir, filename),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handlers = append(handlers, &fileHandler{writer: f, level: level})
	}

	return &Logger{
		slogger: slog.New(&teeHandler{handlers: handlers}),
		file:    file,
	}, nil
}

// Slog exposes the underlying structured logger for integrations that want
// attribute-based records (observability hooks).
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

func (l *Logger) Debug(format string, args ...any) {
	l.slogger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.slogger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.slogger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.slogger.Error(fmt.Sprintf(format, args...))
}

// InfoTag prefixes the message with a module tag, e.g. [HTTP].
func (l *Logger) InfoTag(tag, format string, args ...any) {
	l.slogger.Info("[" + tag + "] " + fmt.Sprintf(format, args...))
}

func (l *Logger) WarnTag(tag, format string, args ...any) {
	l.slogger.Warn("[" + tag + "] " + fmt.Sprintf(format, args...))
}

func (l *Logger) ErrorTag(tag, format string, args ...any) {
	l.slogger.Error("[" + tag + "] " + fmt.Sprintf(format, args...))
}

func (l *Logger) DebugTag(tag, format string, args ...any) {
	l.slogger.Debug("[" + tag + "] " + fmt.Sprintf(format, args...))
}

// Close flushes and releases the log file, if any.
func (l *Logger) Close() {
	l.closed.Do(func() {
		if l.file != nil {
			_ = l.file.Close()
		}
	})
}
