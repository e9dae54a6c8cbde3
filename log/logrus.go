package log

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusProps are the options used to build a logrus
// backed Logger
type LogrusProps struct {
	Formatter logrus.Formatter
	Level     logrus.Level
	Output    io.Writer
}

type logrusLogger struct {
	root  *logrus.Logger
	entry *logrus.Entry
}

// NewLogrus creates a Logger backed by a logrus logger. By
// default it writes JSON formatted statements to stdout
func NewLogrus(props LogrusProps) Logger {
	root := logrus.New()

	if props.Formatter == nil {
		root.SetFormatter(&logrus.JSONFormatter{})
	} else {
		root.SetFormatter(props.Formatter)
	}

	root.SetLevel(props.Level)

	if props.Output == nil {
		root.SetOutput(os.Stdout)
	} else {
		root.SetOutput(props.Output)
	}

	return &logrusLogger{root: root, entry: logrus.NewEntry(root)}
}

func (l *logrusLogger) ForClass(pkg string, class string) Logger {
	return &logrusLogger{
		root: l.root,
		entry: l.root.WithFields(logrus.Fields{
			"pkg":   pkg,
			"class": class,
		}),
	}
}

func (l *logrusLogger) Debug(ctx context.Context, msg string, loggables ...Loggable) {
	l.entry.WithFields(logrusCollectFields(ctx, loggables...)).Debug(msg)
}

func (l *logrusLogger) Info(ctx context.Context, msg string, loggables ...Loggable) {
	l.entry.WithFields(logrusCollectFields(ctx, loggables...)).Info(msg)
}

func (l *logrusLogger) Warn(ctx context.Context, msg string, loggables ...Loggable) {
	l.entry.WithFields(logrusCollectFields(ctx, loggables...)).Warn(msg)
}

func (l *logrusLogger) Error(ctx context.Context, msg string, loggables ...Loggable) {
	l.entry.WithFields(logrusCollectFields(ctx, loggables...)).Error(msg)
}

func logrusCollectFields(ctx context.Context, loggables ...Loggable) logrus.Fields {
	fields := logrusFields{fields: logrus.Fields{}}

	for _, loggable := range loggables {
		loggable.Log(&fields)
	}

	if traceID := GetTraceID(ctx); len(traceID) > 0 {
		fields.Add("traceId", traceID)
	}

	return fields.fields
}

type logrusFields struct {
	fields logrus.Fields
}

func (f *logrusFields) Add(key string, value interface{}) {
	f.fields[key] = value
}
