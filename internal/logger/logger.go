package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the process logger. Debug level in dev, info otherwise.
func New(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}
