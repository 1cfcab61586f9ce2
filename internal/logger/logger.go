// Package logger provides a dual file+stdout slog wrapper: a JSON handler
// writing to both a dated log file and stdout. The orchestrator's call
// sites log run_id/scenario_id/duration_ms fields for attribution;
// WithContract attaches contract_id but is not called outside its tests.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger wraps *slog.Logger so callers can attach irrbb-specific helper
// methods without importing log/slog directly.
type Logger struct {
	*slog.Logger
}

// New creates a structured logger with dual output (file + stdout).
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	multiWriter := io.MultiWriter(file, os.Stdout)

	handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})

	return &Logger{slog.New(handler)}, nil
}

// WithScenario returns a child logger carrying the scenario_id field, used
// by each orchestrator worker so every log line it emits is attributable.
func (l *Logger) WithScenario(scenarioID string) *Logger {
	return &Logger{l.With(slog.String("scenario_id", scenarioID))}
}

// WithContract returns a child logger carrying the contract_id field.
func (l *Logger) WithContract(contractID string) *Logger {
	return &Logger{l.With(slog.String("contract_id", contractID))}
}
