package dashboard

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes every event as a structured debug entry.
type LogTelemetry struct {
	logger logrus.FieldLogger
}

// NewLogTelemetry wraps a logrus logger. A nil logger discards output.
func NewLogTelemetry(logger logrus.FieldLogger) *LogTelemetry {
	return &LogTelemetry{logger: normalizeLogger(logger)}
}

// Record implements Telemetry.
func (t *LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.logger.WithFields(logrus.Fields(payload)).WithField("event", event).Debug("dashboard event")
}

// MultiTelemetry forwards events to every non-nil sink.
func MultiTelemetry(sinks ...Telemetry) Telemetry {
	out := make(multiTelemetry, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

type multiTelemetry []Telemetry

func (m multiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		sink.Record(ctx, event, payload)
	}
}

func normalizeLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}
