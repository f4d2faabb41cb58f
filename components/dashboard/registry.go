package dashboard

import (
	"fmt"
	"slices"
	"sync"
)

// DeclarationHook lets packages register widget declarations during init().
type DeclarationHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []DeclarationHook
)

// RegisterDeclarationHook registers a hook executed against new registries.
func RegisterDeclarationHook(h DeclarationHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry keeps widget declarations per dashboard context in declaration order.
type Registry struct {
	mu       sync.RWMutex
	contexts map[DashboardContext][]WidgetDeclaration
	order    []DashboardContext
}

// NewRegistry builds a registry seeded with the default declarations and
// applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, dashCtx := range DefaultContexts() {
		reg.SetContext(dashCtx, DefaultDeclarations(dashCtx))
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without defaults or hooks.
func NewEmptyRegistry() *Registry {
	return &Registry{contexts: map[DashboardContext][]WidgetDeclaration{}}
}

// ApplyHooks executes registered declaration hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register appends a declaration to a context. Re-registering an id replaces
// it in place so declaration order is kept.
func (r *Registry) Register(dashCtx DashboardContext, decl WidgetDeclaration) error {
	if dashCtx == "" {
		return errMissingContext
	}
	if decl.ID == "" {
		return fmt.Errorf("dashboard: widget declaration id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(dashCtx)
	decls := r.contexts[dashCtx]
	if idx := slices.IndexFunc(decls, func(d WidgetDeclaration) bool { return d.ID == decl.ID }); idx >= 0 {
		decls[idx] = decl
		return nil
	}
	r.contexts[dashCtx] = append(decls, decl)
	return nil
}

// SetContext replaces every declaration of a context.
func (r *Registry) SetContext(dashCtx DashboardContext, decls []WidgetDeclaration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(dashCtx)
	r.contexts[dashCtx] = append([]WidgetDeclaration{}, decls...)
}

// Remove drops a declaration from a context.
func (r *Registry) Remove(dashCtx DashboardContext, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	decls := r.contexts[dashCtx]
	idx := slices.IndexFunc(decls, func(d WidgetDeclaration) bool { return d.ID == id })
	if idx < 0 {
		return false
	}
	r.contexts[dashCtx] = slices.Delete(slices.Clone(decls), idx, idx+1)
	return true
}

// Declarations returns a copy of a context's declarations.
func (r *Registry) Declarations(dashCtx DashboardContext) ([]WidgetDeclaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls, ok := r.contexts[dashCtx]
	if !ok {
		return nil, false
	}
	return append([]WidgetDeclaration{}, decls...), true
}

// Contexts lists registered contexts in registration order.
func (r *Registry) Contexts() []DashboardContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]DashboardContext{}, r.order...)
}

func (r *Registry) touch(dashCtx DashboardContext) {
	if _, ok := r.contexts[dashCtx]; !ok {
		r.order = append(r.order, dashCtx)
		r.contexts[dashCtx] = nil
	}
}
