package logger

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Interface {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)    {}
func (nopLogger) Warn(string, ...any)    {}
func (nopLogger) Error(string, ...any)   {}
func (nopLogger) Success(string, ...any) {}
func (nopLogger) With(...any) Interface  { return nopLogger{} }
