package main

import (
	"fmt"
	"io"
	"log"
	"strings"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// parseLogLevel is case-insensitive and falls back to info.
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger writes leveled lines to stderr. Simulation output goes to stdout.
type Logger struct {
	level LogLevel
	out   *log.Logger
}

func NewLogger(level string, w io.Writer) *Logger {
	return &Logger{
		level: parseLogLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) Debugf(format string, v ...any) {
	if l.shouldLog(LogLevelDebug) {
		l.out.Printf("[DEBUG] "+format, v...)
	}
}

func (l *Logger) Infof(format string, v ...any) {
	if l.shouldLog(LogLevelInfo) {
		l.out.Printf("[INFO] "+format, v...)
	}
}

func (l *Logger) Warnf(format string, v ...any) {
	if l.shouldLog(LogLevelWarn) {
		l.out.Printf("[WARN] "+format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...any) {
	if l.shouldLog(LogLevelError) {
		l.out.Printf("[ERROR] "+format, v...)
	}
}

func (l *Logger) Warn(v ...any) {
	if l.shouldLog(LogLevelWarn) {
		l.out.Print("[WARN] ", fmt.Sprint(v...))
	}
}
