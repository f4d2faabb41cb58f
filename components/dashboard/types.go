package dashboard

import "context"

// ModuleName identifies a dashboard feature toggle (e.g. "clinicalAI").
type ModuleName string

// DashboardContext namespaces widget orders and declarations (e.g. "admin").
type DashboardContext string

// Backend persists serialized settings records under a storage key.
// Implementations must make Save atomic: a reader never observes a partial record.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// OrderCommitter receives committed widget orders from drag sessions.
type OrderCommitter interface {
	SetWidgetOrder(ctx context.Context, userID string, dashCtx DashboardContext, ids []string) error
}

// CapabilityResolver returns externally supplied capability flags for a viewer
// (role checks, feature flags owned by other systems).
type CapabilityResolver interface {
	Capabilities(ctx context.Context, viewer ViewerContext) Capabilities
}

// RefreshHook notifies transports (WebSocket/SSE) about settings changes.
type RefreshHook interface {
	SettingsChanged(ctx context.Context, event SettingsEvent) error
}

// ViewerContext captures the authenticated user requesting a dashboard.
type ViewerContext struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Capabilities is a set of externally supplied flags.
type Capabilities map[string]bool

// Has reports whether the flag is present and true.
func (c Capabilities) Has(flag string) bool {
	return c[flag]
}

// WidgetDeclaration is supplied by the rendering layer for every render cycle.
type WidgetDeclaration struct {
	ID       string      `json:"id" yaml:"id"`
	Title    string      `json:"title" yaml:"title"`
	Content  any         `json:"content,omitempty" yaml:"-"`
	Requires Requirement `json:"-" yaml:"-"`
}

// WidgetDescriptor is the resolved, render-ready view of a widget.
type WidgetDescriptor struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content any    `json:"content,omitempty"`
	Ordinal int    `json:"ordinal"`
	Enabled bool   `json:"enabled"`
}

// Layout is the reconciled widget list for one dashboard context.
type Layout struct {
	Context DashboardContext   `json:"context"`
	Widgets []WidgetDescriptor `json:"widgets"`
}

// SettingsEvent describes a settings mutation that transports might care about.
type SettingsEvent struct {
	UserID  string           `json:"user_id"`
	Context DashboardContext `json:"context,omitempty"`
	Reason  string           `json:"reason"`
	Order   []string         `json:"order,omitempty"`
}
