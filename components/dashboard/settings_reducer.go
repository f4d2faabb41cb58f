package dashboard

// The functions below are the pure transitions applied by Store. Each takes
// the current record by value and returns the next one without touching the
// input's maps or slices.

func toggleModule(s Settings, module ModuleName) Settings {
	next := s.Clone()
	next.DashboardModules[module] = !s.DashboardModules[module]
	return next
}

func setModules(s Settings, modules map[ModuleName]bool) Settings {
	next := s.Clone()
	for m, enabled := range modules {
		next.DashboardModules[m] = enabled
	}
	return next
}

func setWidgetOrder(s Settings, dashCtx DashboardContext, ids []string) Settings {
	next := s.Clone()
	next.WidgetOrder[dashCtx] = append([]string{}, ids...)
	return next
}

func resetWidgetOrder(s Settings, dashCtx DashboardContext) Settings {
	next := s.Clone()
	next.WidgetOrder[dashCtx] = []string{}
	return next
}

// resetAll keeps the user id and every known context key, clearing the orders.
func resetAll(s Settings) Settings {
	next := DefaultSettings(s.UserID)
	for dashCtx := range s.WidgetOrder {
		next.WidgetOrder[dashCtx] = []string{}
	}
	return next
}

func applyPreferences(s Settings, patch PreferencesPatch) Settings {
	next := s.Clone()
	if patch.SidebarCollapsed != nil {
		next.SidebarCollapsed = *patch.SidebarCollapsed
	}
	if patch.Theme != nil {
		next.Theme = *patch.Theme
	}
	if patch.Notifications != nil {
		next.Notifications = *patch.Notifications
	}
	if patch.DateFormat != nil {
		next.DateFormat = *patch.DateFormat
	}
	if patch.Timezone != nil {
		next.Timezone = *patch.Timezone
	}
	return next
}

// normalizeSettings fills nil maps on decoded records so readers never see nil.
func normalizeSettings(s *Settings) {
	if s.DashboardModules == nil {
		s.DashboardModules = map[ModuleName]bool{}
	}
	if s.WidgetOrder == nil {
		s.WidgetOrder = map[DashboardContext][]string{}
	}
	for dashCtx, ids := range s.WidgetOrder {
		if ids == nil {
			s.WidgetOrder[dashCtx] = []string{}
		}
	}
}
