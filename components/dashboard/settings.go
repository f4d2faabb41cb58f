package dashboard

import "maps"

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Supported date formats.
const (
	DateFormatUS  = "MM/DD/YYYY"
	DateFormatEU  = "DD/MM/YYYY"
	DateFormatISO = "YYYY-MM-DD"
)

// NotificationPreferences toggles delivery channels.
type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	InApp bool `json:"inApp"`
}

// Settings is the durable per-user aggregate owned by the Store.
type Settings struct {
	UserID           string                        `json:"userId"`
	DashboardModules map[ModuleName]bool           `json:"dashboardModules"`
	WidgetOrder      map[DashboardContext][]string `json:"widgetOrder"`
	SidebarCollapsed bool                          `json:"sidebarCollapsed"`
	Theme            Theme                         `json:"theme"`
	Notifications    NotificationPreferences       `json:"notifications"`
	DateFormat       string                        `json:"dateFormat"`
	Timezone         string                        `json:"timezone"`
}

// PreferencesPatch updates the non-layout preferences. Nil fields are left untouched.
type PreferencesPatch struct {
	SidebarCollapsed *bool                    `json:"sidebarCollapsed,omitempty"`
	Theme            *Theme                   `json:"theme,omitempty"`
	Notifications    *NotificationPreferences `json:"notifications,omitempty"`
	DateFormat       *string                  `json:"dateFormat,omitempty"`
	Timezone         *string                  `json:"timezone,omitempty"`
}

// Clone returns a deep copy so callers never share maps or slices with the store.
func (s Settings) Clone() Settings {
	out := s
	out.DashboardModules = maps.Clone(s.DashboardModules)
	if out.DashboardModules == nil {
		out.DashboardModules = map[ModuleName]bool{}
	}
	out.WidgetOrder = make(map[DashboardContext][]string, len(s.WidgetOrder))
	for ctx, ids := range s.WidgetOrder {
		out.WidgetOrder[ctx] = append([]string{}, ids...)
	}
	return out
}

// ModuleEnabled reports the toggle state; unknown modules are disabled.
func (s Settings) ModuleEnabled(module ModuleName) bool {
	return s.DashboardModules[module]
}
