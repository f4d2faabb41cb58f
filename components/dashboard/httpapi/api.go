package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/queries"
)

// MaxBodyBytes caps request bodies when Handlers.MaxBodyBytes is unset.
const MaxBodyBytes int64 = 1 << 20

// ViewerFunc extracts the acting viewer from a request.
type ViewerFunc func(*http.Request) dashboard.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Reorder     gocommand.Commander[commands.ReorderWidgetsInput]
	ResetOrder  gocommand.Commander[commands.ResetWidgetOrderInput]
	Toggle      gocommand.Commander[commands.ToggleModuleInput]
	SetModules  gocommand.Commander[commands.SetAllModulesInput]
	Preferences gocommand.Commander[commands.UpdatePreferencesInput]
	Reset       gocommand.Commander[commands.ResetSettingsInput]
	Import      gocommand.Commander[commands.ImportSettingsInput]
	Export      gocommand.Querier[dashboard.ViewerContext, string]
	Layout      gocommand.Querier[queries.LayoutInput, dashboard.Layout]
	Viewer      ViewerFunc
	// MaxBodyBytes overrides the MaxBodyBytes default when positive.
	MaxBodyBytes int64
}

func (h *Handlers) body(w http.ResponseWriter, r *http.Request) io.Reader {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = MaxBodyBytes
	}
	return http.MaxBytesReader(w, r.Body, limit)
}

// bodyError answers a failed body read: 413 past the limit, 400 otherwise.
func bodyError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	http.Error(w, err.Error(), status)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return ViewerFromRequest(r)
}

// ViewerFromRequest reads the viewer from X-User-ID and X-User-Role headers.
func ViewerFromRequest(r *http.Request) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID: r.Header.Get("X-User-ID"),
		Role:   r.Header.Get("X-User-Role"),
	}
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request, dashCtx dashboard.DashboardContext) {
	if h.Layout == nil {
		http.Error(w, "layout query not configured", http.StatusNotImplemented)
		return
	}
	layout, err := h.Layout.Query(r.Context(), queries.LayoutInput{Viewer: h.viewer(r), Context: dashCtx})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if err := json.NewDecoder(h.body(w, r)).Decode(&payload); err != nil {
		bodyError(w, err)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Reorder.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleResetOrder(w http.ResponseWriter, r *http.Request, dashCtx dashboard.DashboardContext) {
	input := commands.ResetWidgetOrderInput{Viewer: h.viewer(r), Context: dashCtx}
	if err := h.ResetOrder.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleToggleModule(w http.ResponseWriter, r *http.Request, module dashboard.ModuleName) {
	input := commands.ToggleModuleInput{Viewer: h.viewer(r), Module: module}
	if err := h.Toggle.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetModules(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetAllModulesInput
	if err := json.NewDecoder(h.body(w, r)).Decode(&payload); err != nil {
		bodyError(w, err)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.SetModules.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch dashboard.PreferencesPatch
	if err := json.NewDecoder(h.body(w, r)).Decode(&patch); err != nil {
		bodyError(w, err)
		return
	}
	input := commands.UpdatePreferencesInput{Viewer: h.viewer(r), Patch: patch}
	if err := h.Preferences.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.Reset.Execute(r.Context(), commands.ResetSettingsInput{Viewer: h.viewer(r)}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleExportSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Export.Query(r.Context(), h.viewer(r))
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard-settings.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// HandleImportSettings accepts the raw exported document as the request body.
func (h *Handlers) HandleImportSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(h.body(w, r))
	if err != nil {
		bodyError(w, err)
		return
	}
	input := commands.ImportSettingsInput{Viewer: h.viewer(r), Document: string(body)}
	if err := h.Import.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case dashboard.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case dashboard.IsBadRequest(err):
		return http.StatusBadRequest
	case dashboard.IsForbidden(err):
		return http.StatusForbidden
	case dashboard.IsNotFound(err), errors.Is(err, dashboard.ErrUnknownWidget):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrDragModeDisabled),
		errors.Is(err, dashboard.ErrDragInProgress),
		errors.Is(err, dashboard.ErrNoActiveDrag):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrNotInitialized):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
