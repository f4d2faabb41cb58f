package dashboard

import "strings"

// Requirement decides whether a declared widget is available for a viewer.
type Requirement interface {
	Satisfied(toggles map[ModuleName]bool, caps Capabilities) bool
	String() string
}

type alwaysRequirement struct{}

func (alwaysRequirement) Satisfied(map[ModuleName]bool, Capabilities) bool { return true }
func (alwaysRequirement) String() string                                  { return "always" }

type moduleRequirement ModuleName

func (m moduleRequirement) Satisfied(toggles map[ModuleName]bool, _ Capabilities) bool {
	return toggles[ModuleName(m)]
}

func (m moduleRequirement) String() string { return "module:" + string(m) }

type capabilityRequirement string

func (c capabilityRequirement) Satisfied(_ map[ModuleName]bool, caps Capabilities) bool {
	return caps.Has(string(c))
}

func (c capabilityRequirement) String() string { return "capability:" + string(c) }

type allOfRequirement []Requirement

func (a allOfRequirement) Satisfied(toggles map[ModuleName]bool, caps Capabilities) bool {
	for _, req := range a {
		if !satisfied(req, toggles, caps) {
			return false
		}
	}
	return true
}

func (a allOfRequirement) String() string { return joinRequirements("all", a) }

type anyOfRequirement []Requirement

func (a anyOfRequirement) Satisfied(toggles map[ModuleName]bool, caps Capabilities) bool {
	for _, req := range a {
		if satisfied(req, toggles, caps) {
			return true
		}
	}
	return false
}

func (a anyOfRequirement) String() string { return joinRequirements("any", a) }

// Always is satisfied for every viewer.
func Always() Requirement { return alwaysRequirement{} }

// RequireModule is satisfied when the module toggle is on. Unknown modules are off.
func RequireModule(module ModuleName) Requirement { return moduleRequirement(module) }

// RequireCapability is satisfied when the external capability flag is set.
func RequireCapability(flag string) Requirement { return capabilityRequirement(flag) }

// AllOf is satisfied when every requirement is. An empty list is always satisfied.
func AllOf(reqs ...Requirement) Requirement { return allOfRequirement(reqs) }

// AnyOf is satisfied when at least one requirement is. An empty list is never satisfied.
func AnyOf(reqs ...Requirement) Requirement { return anyOfRequirement(reqs) }

func satisfied(req Requirement, toggles map[ModuleName]bool, caps Capabilities) bool {
	if req == nil {
		return true
	}
	return req.Satisfied(toggles, caps)
}

func joinRequirements(op string, reqs []Requirement) string {
	parts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req == nil {
			parts = append(parts, Always().String())
			continue
		}
		parts = append(parts, req.String())
	}
	return op + "(" + strings.Join(parts, ",") + ")"
}

// Resolve filters declarations down to the widgets the viewer may see. Survivors
// keep declaration order, are enabled and carry their position as ordinal.
// A nil Requires is treated as Always.
func Resolve(decls []WidgetDeclaration, toggles map[ModuleName]bool, caps Capabilities) []WidgetDescriptor {
	out := make([]WidgetDescriptor, 0, len(decls))
	for _, decl := range decls {
		if !satisfied(decl.Requires, toggles, caps) {
			continue
		}
		out = append(out, WidgetDescriptor{
			ID:      decl.ID,
			Title:   decl.Title,
			Content: decl.Content,
			Ordinal: len(out),
			Enabled: true,
		})
	}
	return out
}
