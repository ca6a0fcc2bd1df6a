package logging

// NopLogger discards all log messages.
type NopLogger struct{}

// NewNopLogger creates a logger that drops everything.
func NewNopLogger() NopLogger {
	return NopLogger{}
}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}

func (n NopLogger) With(...Field) Logger { return n }
