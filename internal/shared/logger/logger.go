package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes the root zerolog.Logger. devMode enables human-readable
// console output; production uses JSON.
func New(devMode bool) zerolog.Logger {
	if devMode {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		return zerolog.New(consoleWriter).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
