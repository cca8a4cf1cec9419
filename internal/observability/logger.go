package observability

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	initialized  bool
)

// InitLogger initializes the global structured logger
func InitLogger(level string, pretty bool) {
	if initialized {
		return
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		// Console output for interactive use (the relay talks to a human)
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		globalLogger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		// JSON output when running as a service
		globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	log.Logger = globalLogger

	initialized = true
}

// GetLogger returns the global logger
func GetLogger() zerolog.Logger {
	if !initialized {
		InitLogger("info", true)
	}
	return globalLogger
}

// WithCycleID creates a logger carrying the ID of one command cycle
// (wake detection through spoken response).
func WithCycleID(cycleID string) zerolog.Logger {
	if cycleID == "" {
		cycleID = NewCycleID()
	}
	return GetLogger().With().Str("cycle_id", cycleID).Logger()
}

// NewCycleID generates an ID for a command cycle
func NewCycleID() string {
	return uuid.New().String()
}
