package commands

import (
	"context"

	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

// Telemetry is the sink commands report to; the dashboard service and the
// metrics package accept the same values.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
