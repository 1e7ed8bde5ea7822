package logger

import (
	"io"
	"os"
	"time"

	"hangeul/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Console output is meant for local runs only.
func New(conf *config.Config) zerolog.Logger {
	return NewWithWriter(conf, os.Stdout)
}

func NewWithWriter(conf *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	w := out
	if conf.Logger.Pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", "hangeul").
		Logger()
}
