package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/commands"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/httpapi"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, API, and refresh hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	// Broadcast mounts a socket that streams every user's settings events.
	// Mount it only for trusted consumers; per-user streams should use
	// BroadcastHook.ServeWebSocket or ServeSSE with WithUserResolver.
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	Layout      string
	Order       string
	Modules     string
	ModuleID    string
	Preferences string
	Settings    string
	Export      string
	Import      string
	Drag        string
	WebSocket   string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/app"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		dashCtx := contextParam(ctx)
		page := dashboard.PageState{
			Theme:    dashboard.Theme(ctx.Query("theme")),
			DragMode: ctx.Query("drag") == "1",
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, dashCtx, page, &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		layout, err := cfg.Controller.LayoutJSON(ctx.Context(), viewer, contextParam(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, layout)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
		registerDrag(group, cfg.API, viewerResolver, routes.Drag)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Order, router.WrapHandler(func(ctx router.Context) error {
		order, err := api.WidgetOrder(ctx.Context(), queries.WidgetOrderInput{Viewer: resolver(ctx), Context: contextParam(ctx)})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"order": order})
	}))

	r.Post(routes.Order, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderWidgetsInput
		if status, err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, status, err)
		}
		payload.Viewer = resolver(ctx)
		if err := api.Reorder(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		order, err := api.WidgetOrder(ctx.Context(), queries.WidgetOrderInput{Viewer: payload.Viewer, Context: payload.Context})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"status": "reordered", "order": order})
	}))

	r.Delete(routes.Order, router.WrapHandler(func(ctx router.Context) error {
		input := commands.ResetWidgetOrderInput{Viewer: resolver(ctx), Context: contextParam(ctx)}
		if err := api.ResetOrder(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
	}))

	r.Post(routes.Modules, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetAllModulesInput
		if status, err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, status, err)
		}
		payload.Viewer = resolver(ctx)
		if err := api.SetModules(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.ModuleID, router.WrapHandler(func(ctx router.Context) error {
		module := ctx.Param("module")
		if module == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("module is required"))
		}
		input := commands.ToggleModuleInput{Viewer: resolver(ctx), Module: dashboard.ModuleName(module)}
		if err := api.ToggleModule(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var patch dashboard.PreferencesPatch
		if status, err := decodeJSON(ctx, &patch); err != nil {
			return respondError(ctx, status, err)
		}
		input := commands.UpdatePreferencesInput{Viewer: resolver(ctx), Patch: patch}
		if err := api.Preferences(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Delete(routes.Settings, router.WrapHandler(func(ctx router.Context) error {
		if err := api.ResetSettings(ctx.Context(), commands.ResetSettingsInput{Viewer: resolver(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		doc, err := api.ExportSettings(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetHeader("Content-Disposition", `attachment; filename="dashboard-settings.json"`)
		return ctx.Send([]byte(doc))
	}))

	r.Post(routes.Import, router.WrapHandler(func(ctx router.Context) error {
		body, err := requestBody(ctx)
		if err != nil {
			return respondError(ctx, http.StatusRequestEntityTooLarge, err)
		}
		input := commands.ImportSettingsInput{Viewer: resolver(ctx), Document: string(body)}
		if err := api.ImportSettings(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "imported"})
	}))
}

func registerDrag[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, base string) {
	target := func(ctx router.Context) commands.DragTarget {
		return commands.DragTarget{Viewer: resolver(ctx), Context: contextParam(ctx)}
	}
	session := func(ctx router.Context, status string) error {
		t := target(ctx)
		state, err := api.DragSession(ctx.Context(), queries.DragSessionInput{Viewer: t.Viewer, Context: t.Context})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"status": status, "drag": state})
	}

	r.Get(base, router.WrapHandler(func(ctx router.Context) error {
		return session(ctx, "ok")
	}))

	r.Post(base+"/mode", router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Enabled bool `json:"enabled"`
		}
		if status, err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, status, err)
		}
		if err := api.DragMode(ctx.Context(), commands.DragModeInput{DragTarget: target(ctx), Enabled: payload.Enabled}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"status": "ok", "enabled": payload.Enabled})
	}))

	r.Post(base+"/start", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.StartDragInput
		if status, err := decodeJSON(ctx, &payload); err != nil {
			return respondError(ctx, status, err)
		}
		payload.DragTarget = target(ctx)
		if err := api.StartDrag(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return session(ctx, "started")
	}))

	r.Post(base+"/over", router.WrapHandler(func(ctx router.Context) error {
		var move dashboard.DragMove
		if status, err := decodeJSON(ctx, &move); err != nil {
			return respondError(ctx, status, err)
		}
		if err := api.DragOver(ctx.Context(), commands.DragOverInput{DragTarget: target(ctx), Move: move}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return session(ctx, "moved")
	}))

	r.Post(base+"/end", router.WrapHandler(func(ctx router.Context) error {
		t := target(ctx)
		if err := api.EndDrag(ctx.Context(), commands.EndDragInput{DragTarget: t}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		order, err := api.WidgetOrder(ctx.Context(), queries.WidgetOrderInput{Viewer: t.Viewer, Context: t.Context})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"status": "ended", "order": order})
	}))

	r.Post(base+"/cancel", router.WrapHandler(func(ctx router.Context) error {
		if err := api.CancelDrag(ctx.Context(), commands.CancelDragInput{DragTarget: target(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := ctx.Locals("role").(string); ok {
		viewer.Role = v
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(ctx.Header("X-User-ID"))
	}
	if viewer.Role == "" {
		viewer.Role = strings.ToLower(strings.TrimSpace(ctx.Header("X-User-Role")))
	}
	return viewer
}

// contextParam reads the dashboard context from ?context=; empty selects the role default.
func contextParam(ctx router.Context) dashboard.DashboardContext {
	return dashboard.DashboardContext(strings.ToLower(strings.TrimSpace(ctx.Query("context"))))
}

// requestBody returns the body unless it exceeds httpapi.MaxBodyBytes.
func requestBody(ctx router.Context) ([]byte, error) {
	body := ctx.Body()
	if int64(len(body)) > httpapi.MaxBodyBytes {
		return nil, fmt.Errorf("request body exceeds %d bytes", httpapi.MaxBodyBytes)
	}
	return body, nil
}

// decodeJSON unmarshals a size-checked body into v and reports the status
// to answer with on failure.
func decodeJSON(ctx router.Context, v any) (int, error) {
	body, err := requestBody(ctx)
	if err != nil {
		return http.StatusRequestEntityTooLarge, err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	routes := defaultRouteConfig(cfg.Routes)
	return routes
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Order == "" {
		routes.Order = "/dashboard/order"
	}
	if routes.Modules == "" {
		routes.Modules = "/dashboard/modules"
	}
	if routes.ModuleID == "" {
		routes.ModuleID = "/dashboard/modules/:module/toggle"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.Settings == "" {
		routes.Settings = "/dashboard/settings"
	}
	if routes.Export == "" {
		routes.Export = "/dashboard/settings/export"
	}
	if routes.Import == "" {
		routes.Import = "/dashboard/settings/import"
	}
	if routes.Drag == "" {
		routes.Drag = "/dashboard/drag"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
