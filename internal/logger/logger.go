package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var defaultLogger *slog.Logger

// getLogFilePath determines the path for the application log file based on XDG spec.
func getLogFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	return filepath.Join(stateDir, "cv", "cv.log"), nil
}

// openLogFile creates the log directory and opens the log file for appending.
// Failures are reported on stderr and file logging is skipped.
func openLogFile() io.Writer {
	logFilePath, err := getLogFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error determining log file path: %v. File logging disabled.\n", err)
		return nil
	}
	logDir := filepath.Dir(logFilePath)
	// 0750: user rwx, group rx, others ---
	if err := os.MkdirAll(logDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log directory %s: %v. File logging disabled.\n", logDir, err)
		return nil
	}
	// The handle is left to the OS to close on exit.
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file %s: %v. File logging disabled.\n", logFilePath, err)
		return nil
	}
	return file
}

// InitLogger configures the default logger. Logs always go to the state
// file; stderr is added when verbose is set and the terminal is not owned by
// the monitor TUI. Verbose also lowers the level to debug.
func InitLogger(verbose, isTUI bool) {
	var writers []io.Writer
	if file := openLogFile(); file != nil {
		writers = append(writers, file)
	}
	if verbose && !isTUI {
		writers = append(writers, os.Stderr)
	}

	var finalWriter io.Writer
	switch len(writers) {
	case 0:
		finalWriter = io.Discard
	case 1:
		finalWriter = writers[0]
	default:
		finalWriter = io.MultiWriter(writers...)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	defaultLogger = slog.New(slog.NewJSONHandler(finalWriter, &slog.HandlerOptions{Level: level}))
}

// SetLogger replaces the default logger.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// checkLogger ensures the logger is initialized before use, preventing nil panics.
func checkLogger() {
	if defaultLogger == nil {
		defaultLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	checkLogger()
	defaultLogger.Info(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	checkLogger()
	defaultLogger.Error(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	checkLogger()
	defaultLogger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	checkLogger()
	defaultLogger.Warn(msg, args...)
}
