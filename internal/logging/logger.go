package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is what the tutor, the session and the server log through.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Debug(msg string, fields ...Field)
}

// Field is a key/value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field        { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field   { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// ZerologAdapter writes entries through zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps l.
func NewZerologAdapter(l zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: l}
}

// NewLogger emits one JSON object per line, stamped with the component name.
// The server uses it so that lines can be shipped as-is.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	return NewZerologAdapter(zerolog.New(w).With().Timestamp().Str("component", component).Logger())
}

// NewConsoleLogger is the terminal flavour used by the one-shot and REPL modes.
func NewConsoleLogger(w io.Writer, component string, noColor bool) *ZerologAdapter {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: "15:04:05"}
	return NewZerologAdapter(zerolog.New(cw).With().Timestamp().Str("component", component).Logger())
}

func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	withFields(z.logger.Info(), fields).Msg(msg)
}

// Error logs at error level; err may be nil.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	withFields(z.logger.Error().Err(err), fields).Msg(msg)
}

func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	withFields(z.logger.Debug(), fields).Msg(msg)
}

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case int64:
			e = e.Int64(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

// NopLogger drops every entry. The TUI uses it so nothing is written over
// the alternate screen.
type NopLogger struct{}

func (NopLogger) Info(string, ...Field)         {}
func (NopLogger) Error(string, error, ...Field) {}
func (NopLogger) Debug(string, ...Field)        {}

var (
	_ Logger = (*ZerologAdapter)(nil)
	_ Logger = NopLogger{}
)
