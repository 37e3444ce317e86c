// Package logging provides levelled real-time log output for shutdown
// coordination. Lines are plain text so they stay readable on a terminal
// while a process is being stopped.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		level = LevelWarn
	}
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New()
	l.output = io.Discard
	return l
}

// WithComponent returns a new logger with the given component name.
// The derived logger shares the parent's output lock.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		traceID:   l.traceID,
	}
}

// WithTraceID returns a new logger with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   traceID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.output = w
	l.mu.Unlock()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs, sorted by key.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.traceID != "" {
		fieldStr += " trace=" + l.traceID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.output.Write([]byte(line))
}

// --- Shutdown event helpers ---

// SignalReceived logs the trigger that started a shutdown cycle.
func (l *Logger) SignalReceived(source string) {
	l.Info("signal_received", map[string]interface{}{
		"source": source,
	})
}

// WorkerStarted logs a worker being spawned at registration.
func (l *Logger) WorkerStarted(id string, registered int) {
	l.Debug("worker_started", map[string]interface{}{
		"worker":     id,
		"registered": registered,
	})
}

// RegistrationRejected logs a worker registered after shutdown began.
func (l *Logger) RegistrationRejected(id, state string) {
	l.Warn("registration_rejected", map[string]interface{}{
		"worker": id,
		"state":  state,
	})
}

// StopBroadcast logs the stop notification fan-out.
func (l *Logger) StopBroadcast(workers int, timeout time.Duration) {
	l.Info("stop_broadcast", map[string]interface{}{
		"workers": workers,
		"timeout": timeout.String(),
	})
}

// WorkerExited logs one worker outcome.
func (l *Logger) WorkerExited(id string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"worker":   id,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("worker_failed", fields)
	} else {
		l.Debug("worker_exited", fields)
	}
}

// ShutdownTimedOut logs the deadline firing with stragglers outstanding.
func (l *Logger) ShutdownTimedOut(remaining int, timeout time.Duration) {
	l.Error("shutdown_timeout", map[string]interface{}{
		"remaining": remaining,
		"timeout":   timeout.String(),
	})
}

// ShutdownComplete logs the end of a shutdown cycle.
func (l *Logger) ShutdownComplete(duration time.Duration, failures int) {
	status := "clean"
	if failures > 0 {
		status = "failed"
	}
	l.Info("shutdown_complete", map[string]interface{}{
		"duration": duration.String(),
		"errors":   failures,
		"status":   status,
	})
}
