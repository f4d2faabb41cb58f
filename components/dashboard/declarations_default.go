package dashboard

// Default widget ids.
const (
	WidgetClinicalDecisionSupport = "cdss-widget"
	WidgetWorkforce               = "workforce-widget"
	WidgetSupplyChain             = "supply-chain-widget"
	WidgetPatientFlow             = "patient-flow-widget"
	WidgetFinancialPerformance    = "financial-performance-widget"
	WidgetLeaderboard             = "leaderboard-widget"
	WidgetAlerts                  = "alerts-widget"
	WidgetRecommendations         = "recommendations-widget"
	WidgetKPIForm                 = "kpi-form-widget"
)

// sharedDeclarations are the sortable widgets every role dashboard renders.
func sharedDeclarations() []WidgetDeclaration {
	return []WidgetDeclaration{
		{ID: WidgetClinicalDecisionSupport, Title: "Clinical Decision Support", Requires: RequireModule(ModuleClinicalAI)},
		{ID: WidgetWorkforce, Title: "Workforce Management", Requires: RequireModule(ModuleWorkforceManagement)},
		{ID: WidgetSupplyChain, Title: "Supply Chain Intelligence", Requires: RequireModule(ModuleSupplyChain)},
		{ID: WidgetPatientFlow, Title: "Patient Flow Management", Requires: RequireModule(ModulePatientFlow)},
		{ID: WidgetFinancialPerformance, Title: "Financial Performance", Requires: RequireModule(ModuleFinancialPerformance)},
	}
}

// DefaultDeclarations returns the stock widgets for a context. Unknown
// contexts get none.
func DefaultDeclarations(dashCtx DashboardContext) []WidgetDeclaration {
	switch dashCtx {
	case ContextAdmin:
		return sharedDeclarations()
	case ContextDirector:
		return append(sharedDeclarations(),
			WidgetDeclaration{ID: WidgetLeaderboard, Title: "Hospital Leaderboard", Requires: RequireModule(ModuleLeaderboard)},
			WidgetDeclaration{ID: WidgetAlerts, Title: "Alerts", Requires: RequireModule(ModuleAlerts)},
		)
	case ContextManager:
		return append(sharedDeclarations(),
			WidgetDeclaration{ID: WidgetRecommendations, Title: "AI Recommendations", Requires: RequireModule(ModuleRecommendations)},
			WidgetDeclaration{ID: WidgetKPIForm, Title: "KPI Submission", Requires: RequireModule(ModuleKPIForm)},
		)
	default:
		return []WidgetDeclaration{}
	}
}
