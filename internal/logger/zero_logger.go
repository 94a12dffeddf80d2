package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// ZeroLogger is a zerolog-backed Logger.
type ZeroLogger struct {
	writer        io.Writer
	level         Level
	defaultFields Fields
	log           zerolog.Logger
}

// NewZeroLogger returns a configured instance of ZeroLogger.
func NewZeroLogger(writer io.Writer, level Level, defaultFields Fields) *ZeroLogger {
	if defaultFields == nil {
		defaultFields = Fields{}
	}
	l := &ZeroLogger{writer: writer, level: level, defaultFields: defaultFields}
	l.configure()
	return l
}

func (l *ZeroLogger) configure() {
	var zLevel zerolog.Level
	switch l.level {
	case LevelInfo:
		zLevel = zerolog.InfoLevel
	case LevelError:
		zLevel = zerolog.ErrorLevel
	case LevelFatal:
		zLevel = zerolog.FatalLevel
	case LevelOff:
		zLevel = zerolog.Disabled
	case LevelDebug:
		zLevel = zerolog.DebugLevel
	default:
		zLevel = zerolog.InfoLevel
	}

	props := make(map[string]interface{}, len(l.defaultFields))
	for k, v := range l.defaultFields {
		props[k] = v
	}

	l.log = zerolog.New(l.writer).With().Fields(props).Timestamp().Logger().Level(zLevel)
}

// Info logs at info level.
func (l *ZeroLogger) Info(message string, properties Fields) {
	l.log.Info().Fields(map[string]interface{}(properties)).Msg(message)
}

// Error logs the error at error level.
func (l *ZeroLogger) Error(err error, properties Fields) {
	l.log.Error().Fields(map[string]interface{}(properties)).Err(err).Msg(err.Error())
}

// Fatal writes the entry and stops the process.
func (l *ZeroLogger) Fatal(err error, properties Fields) {
	l.log.Fatal().Fields(map[string]interface{}(properties)).Err(err).Msg(err.Error())
}

// Debug logs at debug level.
func (l *ZeroLogger) Debug(message string, properties Fields) {
	l.log.Debug().Fields(map[string]interface{}(properties)).Msg(message)
}

func (l *ZeroLogger) SetLevel(level Level) {
	l.level = level
	l.configure()
}
