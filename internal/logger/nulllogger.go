package logger

// NullLogger discards everything. Useful in tests.
type NullLogger struct{}

var _ Logger = (*NullLogger)(nil)

func NewNullLogger() *NullLogger { return &NullLogger{} }

func (l *NullLogger) Info(_ string, _ Fields) {}
func (l *NullLogger) Error(_ error, _ Fields) {}
func (l *NullLogger) Fatal(_ error, _ Fields) {}
func (l *NullLogger) Debug(_ string, _ Fields) {}
func (l *NullLogger) SetLevel(_ Level)         {}
