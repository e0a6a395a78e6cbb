package utils

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	requestIDKey     = "request_id"
	requestIDHeader  = "X-Request-ID"
	draftRoutePrefix = "/api/v1/drafts/"
)

// Logger is the logging surface shared by handlers and the server entrypoint
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger

	LogRequest(entry RequestLog)
	LogError(err error, msg string, args ...any)
}

// RequestLog is one access log line. DraftID is only set for draft routes.
type RequestLog struct {
	Method    string
	Path      string
	Route     string
	Status    int
	Latency   time.Duration
	ClientIP  string
	RequestID string
	DraftID   string
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{logger: logger}
}

// NewDefaultLogger creates a JSON logger for production
func NewDefaultLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// NewDevelopmentLogger creates a text logger at debug level
func NewDevelopmentLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

// LogRequest writes an access log line; 4xx logs at warn, 5xx at error.
func (l *SlogLogger) LogRequest(entry RequestLog) {
	level := slog.LevelInfo
	if entry.Status >= 400 {
		level = slog.LevelWarn
	}
	if entry.Status >= 500 {
		level = slog.LevelError
	}

	args := []any{
		"method", entry.Method,
		"path", entry.Path,
		"status_code", entry.Status,
		"duration", entry.Latency.String(),
		"client_ip", entry.ClientIP,
		"request_id", entry.RequestID,
	}
	if entry.Route != "" {
		args = append(args, "route", entry.Route)
	}
	if entry.DraftID != "" {
		args = append(args, "draft_id", entry.DraftID)
	}
	l.logger.Log(context.Background(), level, "HTTP Request", args...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// LoggerMiddleware logs every request once it has been handled, tagged with the
// request id and, for draft routes, the draft id.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := RequestLog{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Route:     c.FullPath(),
			Status:    c.Writer.Status(),
			Latency:   time.Since(start),
			ClientIP:  c.ClientIP(),
			RequestID: c.GetString(requestIDKey),
		}
		if entry.RequestID == "" {
			entry.RequestID = c.GetHeader(requestIDHeader)
		}
		if strings.HasPrefix(entry.Route, draftRoutePrefix) {
			entry.DraftID = c.Param("id")
		}
		logger.LogRequest(entry)
	}
}

// ToSlogLogger unwraps a SlogLogger for components that take *slog.Logger
func ToSlogLogger(logger Logger) *slog.Logger {
	if slogLogger, ok := logger.(*SlogLogger); ok {
		return slogLogger.logger
	}
	return slog.Default()
}
