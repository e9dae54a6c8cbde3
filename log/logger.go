package log

import "context"

// Fields is a sink for key value pairs attached to a
// log statement
type Fields interface {
	Add(key string, value interface{})
}

// Loggable is implemented by types that know how to
// report themselves as a set of log fields
type Loggable interface {
	Log(fields Fields)
}

// MapFields is a convenience implementation of Loggable
// for ad-hoc field sets
type MapFields map[string]interface{}

func (m MapFields) Log(fields Fields) {
	for key, value := range m {
		fields.Add(key, value)
	}
}

// Logger is the logging interface used across the whole
// codebase. Implementations are expected to be safe for
// concurrent use
type Logger interface {
	// ForClass derives a logger that tags all its statements
	// with the package and type they are issued from
	ForClass(pkg string, class string) Logger
	Debug(ctx context.Context, msg string, loggable ...Loggable)
	Info(ctx context.Context, msg string, loggable ...Loggable)
	Warn(ctx context.Context, msg string, loggable ...Loggable)
	Error(ctx context.Context, msg string, loggable ...Loggable)
}
