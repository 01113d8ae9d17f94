package logging

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

var once sync.Once

var BaseLogger zerolog.Logger

// GetLogger initializes the process-wide logger on first call. The TUI owns
// the terminal, so log output goes to a rotated file under the data
// directory, never to stdout.
func GetLogger(dataDir, level string) zerolog.Logger {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		fileLogger := &lumberjack.Logger{
			Filename:   filepath.Join(dataDir, "log", "ehealth.log"),
			MaxSize:    20,
			MaxBackups: 3,
			Compress:   false,
		}
		var output io.Writer = zerolog.ConsoleWriter{
			Out:        fileLogger,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}

		logLevel, err := zerolog.ParseLevel(level)
		if err != nil || logLevel == zerolog.NoLevel {
			logLevel = zerolog.InfoLevel
		}

		BaseLogger = zerolog.New(output).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", "ehealth-cli").
			Logger()
	})

	return BaseLogger
}
