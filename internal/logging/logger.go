// Package logging provides a small leveled wrapper around the standard logger.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents the logging level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  = LevelInfo
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// SetLevel sets the global log level.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose enables debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	}
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= l
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	if enabled(LevelError) {
		logger.Printf("[ERROR] "+format, args...)
	}
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		logger.Printf("[WARN] "+format, args...)
	}
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		logger.Printf("[DEBUG] "+format, args...)
	}
}
