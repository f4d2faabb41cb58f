package dashboard

import "testing"

func TestResolveFiltersByModuleAndCapability(t *testing.T) {
	decls := []WidgetDeclaration{
		{ID: "a", Title: "A", Requires: RequireModule(ModuleClinicalAI)},
		{ID: "b", Title: "B", Requires: RequireModule(ModuleSupplyChain)},
		{ID: "c", Title: "C", Requires: AllOf(RequireModule(ModuleAlerts), RequireCapability("role:director"))},
		{ID: "d", Title: "D"},
	}
	toggles := map[ModuleName]bool{ModuleClinicalAI: true, ModuleSupplyChain: false, ModuleAlerts: true}
	got := Resolve(decls, toggles, Capabilities{"role:director": true})
	if ids := OrderIDs(got); len(ids) != 3 || ids[0] != "a" || ids[1] != "c" || ids[2] != "d" {
		t.Fatalf("unexpected resolved ids %v", ids)
	}
	for idx, d := range got {
		if !d.Enabled || d.Ordinal != idx {
			t.Fatalf("descriptor %s should be enabled with ordinal %d, got %+v", d.ID, idx, d)
		}
	}
}

func TestResolveUnknownModuleIsDisabled(t *testing.T) {
	decls := []WidgetDeclaration{{ID: "x", Requires: RequireModule("telemetry")}}
	if got := Resolve(decls, map[ModuleName]bool{}, nil); len(got) != 0 {
		t.Fatalf("expected unknown module to hide widget, got %v", got)
	}
}

func TestResolveAnyOf(t *testing.T) {
	req := AnyOf(RequireModule(ModuleUsers), RequireCapability("beta"))
	if !req.Satisfied(map[ModuleName]bool{}, Capabilities{"beta": true}) {
		t.Fatalf("expected capability to satisfy AnyOf")
	}
	if req.Satisfied(map[ModuleName]bool{ModuleUsers: false}, Capabilities{}) {
		t.Fatalf("expected AnyOf to fail when nothing holds")
	}
	if AnyOf().Satisfied(nil, nil) {
		t.Fatalf("empty AnyOf should never be satisfied")
	}
	if !AllOf().Satisfied(nil, nil) {
		t.Fatalf("empty AllOf should always be satisfied")
	}
	if got := req.String(); got != "any(module:users,capability:beta)" {
		t.Fatalf("unexpected requirement string %q", got)
	}
}

func TestResolveDoesNotRequireSettingsForAlways(t *testing.T) {
	got := Resolve([]WidgetDeclaration{{ID: "w1", Requires: Always()}}, nil, nil)
	if len(got) != 1 || got[0].ID != "w1" {
		t.Fatalf("expected always widget, got %v", got)
	}
}
