package dashboard

import (
	"context"
	"errors"
	"io"
)

const defaultTemplate = "dashboard.html"

// LayoutResolver is the part of Service the controller needs.
type LayoutResolver interface {
	Layout(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (Layout, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
	Title    string
}

// Controller renders dashboards for HTTP transports.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if opts.Title == "" {
		opts.Title = "Dashboard"
	}
	return &Controller{opts: opts}
}

// LayoutJSON resolves the layout for a viewer.
func (c *Controller) LayoutJSON(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext) (Layout, error) {
	if c.opts.Service == nil {
		return Layout{Context: dashCtx, Widgets: []WidgetDescriptor{}}, nil
	}
	return c.opts.Service.Layout(ctx, viewer, dashCtx)
}

// RenderTemplate resolves the layout and writes the HTML page to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, dashCtx DashboardContext, page PageState, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	layout, err := c.LayoutJSON(ctx, viewer, dashCtx)
	if err != nil {
		return err
	}
	theme := page.Theme
	if theme == "" {
		theme = ThemeLight
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, map[string]any{
		"title":     c.opts.Title,
		"layout":    layout,
		"viewer":    viewer,
		"theme":     string(theme),
		"drag_mode": page.DragMode,
	}, out)
	return err
}

// PageState carries per-request presentation flags.
type PageState struct {
	Theme    Theme
	DragMode bool
}
