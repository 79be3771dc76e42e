// ============================================================================
// trajexec
// ============================================================================
//
// Package:     telemetry
// Description: Factory for named component loggers, mirroring the teacher
//              platform's logging.New(name) convenience constructor.
// License:     MIT
// ============================================================================

package telemetry

import (
	"os"
	"strings"

	"github.com/msto63/trajexec/internal/telemetry/log"
)

// New creates a named logger reading its level from TRAJEXEC_LOG_LEVEL
// (default info) and its format from TRAJEXEC_LOG_FORMAT (default text).
func New(name string) *log.Logger {
	level, err := log.ParseLevel(os.Getenv("TRAJEXEC_LOG_LEVEL"))
	if err != nil {
		level = log.DefaultLevel()
	}

	format := log.FormatText
	if strings.EqualFold(os.Getenv("TRAJEXEC_LOG_FORMAT"), "json") {
		format = log.FormatJSON
	}

	return log.NewWithConfig(log.Config{
		Level:  level,
		Format: format,
		Output: os.Stdout,
		Name:   name,
	})
}
