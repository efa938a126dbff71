// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger for local environments and a JSON logger for
// prod-like ones.
func New(appEnv string) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.DebugLevel
	switch appEnv {
	case "prod", "production", "release":
		level = zerolog.InfoLevel
	default:
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
