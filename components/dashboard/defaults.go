package dashboard

import "slices"

// Known dashboard modules.
const (
	ModuleUsers                ModuleName = "users"
	ModuleHospitals            ModuleName = "hospitals"
	ModuleClinicalAI           ModuleName = "clinicalAI"
	ModuleWorkforceManagement  ModuleName = "workforceManagement"
	ModuleSupplyChain          ModuleName = "supplyChain"
	ModulePatientFlow          ModuleName = "patientFlow"
	ModuleFinancialPerformance ModuleName = "financialPerformance"
	ModuleLeaderboard          ModuleName = "leaderboard"
	ModuleAlerts               ModuleName = "alerts"
	ModuleKPIForm              ModuleName = "kpiForm"
	ModuleRecommendations      ModuleName = "recommendations"
)

// Known dashboard contexts, one per role.
const (
	ContextAdmin    DashboardContext = "admin"
	ContextDirector DashboardContext = "director"
	ContextManager  DashboardContext = "manager"
)

// Known roles.
const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleManager  = "manager"
)

const (
	defaultTimezone = "America/New_York"
	defaultAppID    = "go-dashboard-prefs"
)

var defaultModules = []ModuleName{
	ModuleUsers,
	ModuleHospitals,
	ModuleClinicalAI,
	ModuleWorkforceManagement,
	ModuleSupplyChain,
	ModulePatientFlow,
	ModuleFinancialPerformance,
	ModuleLeaderboard,
	ModuleAlerts,
	ModuleKPIForm,
	ModuleRecommendations,
}

var defaultContexts = []DashboardContext{ContextAdmin, ContextDirector, ContextManager}

var roleExcludedModules = map[string][]ModuleName{
	RoleAdmin:    nil,
	RoleDirector: {ModuleUsers, ModuleHospitals},
	RoleManager:  {ModuleUsers, ModuleHospitals, ModuleLeaderboard, ModuleAlerts},
}

// DefaultModules lists every known module in display order.
func DefaultModules() []ModuleName {
	return append([]ModuleName{}, defaultModules...)
}

// DefaultContexts lists the dashboard contexts seeded for every user.
func DefaultContexts() []DashboardContext {
	return append([]DashboardContext{}, defaultContexts...)
}

// IsKnownModule reports whether the module is part of the default table.
func IsKnownModule(module ModuleName) bool {
	return slices.Contains(defaultModules, module)
}

// DefaultSettings builds the first-session record for a user: every module
// enabled, an empty order for every default context, stock preferences.
func DefaultSettings(userID string) Settings {
	modules := make(map[ModuleName]bool, len(defaultModules))
	for _, m := range defaultModules {
		modules[m] = true
	}
	order := make(map[DashboardContext][]string, len(defaultContexts))
	for _, c := range defaultContexts {
		order[c] = []string{}
	}
	return Settings{
		UserID:           userID,
		DashboardModules: modules,
		WidgetOrder:      order,
		SidebarCollapsed: false,
		Theme:            ThemeLight,
		Notifications:    NotificationPreferences{Email: true, Push: true, InApp: true},
		DateFormat:       DateFormatUS,
		Timezone:         defaultTimezone,
	}
}

// AvailableModules returns the modules a role may toggle. Unknown roles get none.
func AvailableModules(role string) []ModuleName {
	excluded, ok := roleExcludedModules[role]
	if !ok {
		return []ModuleName{}
	}
	out := make([]ModuleName, 0, len(defaultModules))
	for _, m := range defaultModules {
		if !slices.Contains(excluded, m) {
			out = append(out, m)
		}
	}
	return out
}

// ContextForRole maps a role to its dashboard context.
func ContextForRole(role string) (DashboardContext, bool) {
	switch role {
	case RoleAdmin:
		return ContextAdmin, true
	case RoleDirector:
		return ContextDirector, true
	case RoleManager:
		return ContextManager, true
	default:
		return "", false
	}
}
