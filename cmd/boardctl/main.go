package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-dashboard-prefs/components/dashboard"
	"github.com/goliatone/go-dashboard-prefs/components/dashboard/storage"
	"github.com/goliatone/go-dashboard-prefs/pkg/config"
)

type cli struct {
	EnvFile  []string `name:"env-file" default:".env,.env.local" help:"Env files loaded before reading configuration."`
	User     string   `required:"" short:"u" env:"DASHBOARD_USER" help:"User whose settings are managed."`
	Role     string   `default:"admin" env:"DASHBOARD_ROLE" help:"Role used for module availability and the default context."`
	Driver   string   `help:"Override the storage driver (memory, file, sqlite, redis)."`
	Manifest string   `type:"path" help:"Widget declaration manifest (YAML)."`

	Init    initCmd    `cmd:"" help:"Create the user's settings record when missing."`
	Show    showCmd    `cmd:"" help:"Print the user's settings."`
	Toggle  toggleCmd  `cmd:"" help:"Flip a dashboard module toggle."`
	Modules modulesCmd `cmd:"" help:"Enable or disable every module available to the role."`
	Order   orderCmd   `cmd:"" help:"Read, replace or reset a saved widget order."`
	Reset   resetCmd   `cmd:"" help:"Restore default settings, keeping the user id."`
	Export  exportCmd  `cmd:"" help:"Write the settings as JSON."`
	Import  importCmd  `cmd:"" help:"Replace the settings with an exported JSON document."`
	Layout  layoutCmd  `cmd:"" help:"Print the reconciled widget list for a dashboard context."`
}

// runtime carries the collaborators every command needs.
type runtime struct {
	ctx     context.Context
	out     io.Writer
	service *dashboard.Service
	viewer  dashboard.ViewerContext
	closer  io.Closer
}

func main() {
	var args cli
	parser := kong.Parse(&args,
		kong.Description("Manage per-user dashboard widget settings."),
		kong.UsageOnError(),
	)
	rt, err := args.runtime(context.Background(), os.Stdout)
	parser.FatalIfErrorf(err)
	defer rt.closer.Close()
	parser.FatalIfErrorf(parser.Run(rt))
}

func (c *cli) runtime(ctx context.Context, out io.Writer) (*runtime, error) {
	cfg, err := config.Load(c.EnvFile...)
	if err != nil {
		return nil, err
	}
	if c.Driver != "" {
		cfg.Storage.Driver = c.Driver
	}
	if c.Manifest != "" {
		cfg.ManifestPath = c.Manifest
	}
	logger := cfg.Logger(os.Stderr)
	backend, closer, err := storage.Open(ctx, cfg.Storage.Backend())
	if err != nil {
		return nil, err
	}
	registry, err := dashboard.BootstrapRegistry(cfg.ManifestPath)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	telemetry := dashboard.NewLogTelemetry(logger)
	store := dashboard.NewStore(dashboard.StoreOptions{
		AppID:     cfg.AppID,
		Backend:   backend,
		Telemetry: telemetry,
	})
	service := dashboard.NewService(dashboard.Options{
		Store:     store,
		Registry:  registry,
		Telemetry: telemetry,
		Logger:    logger.WithField("component", "boardctl"),
	})
	return &runtime{
		ctx:     ctx,
		out:     out,
		service: service,
		viewer:  dashboard.ViewerContext{UserID: c.User, Role: c.Role},
		closer:  closer,
	}, nil
}

type initCmd struct{}

func (cmd *initCmd) Run(rt *runtime) error {
	if err := dashboard.SeedUsers(rt.ctx, rt.service.Store(), rt.viewer.UserID); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "settings ready for %s\n", rt.viewer.UserID)
	return nil
}

type showCmd struct{}

func (cmd *showCmd) Run(rt *runtime) error {
	settings, err := rt.service.Settings(rt.ctx, rt.viewer)
	if err != nil {
		return err
	}
	return printJSON(rt.out, settings)
}

type toggleCmd struct {
	Module string `arg:"" help:"Module name (clinicalAI, clinical-ai and clinical_ai are equivalent)."`
}

func (cmd *toggleCmd) Run(rt *runtime) error {
	module, err := parseModule(cmd.Module)
	if err != nil {
		return err
	}
	if err := rt.service.ToggleModule(rt.ctx, rt.viewer, module); err != nil {
		return err
	}
	settings, err := rt.service.Settings(rt.ctx, rt.viewer)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "%s: %t\n", module, settings.ModuleEnabled(module))
	return nil
}

type modulesCmd struct {
	State string `arg:"" enum:"on,off" help:"on enables, off disables."`
}

func (cmd *modulesCmd) Run(rt *runtime) error {
	if err := rt.service.SetAllModules(rt.ctx, rt.viewer, cmd.State == "on"); err != nil {
		return err
	}
	settings, err := rt.service.Settings(rt.ctx, rt.viewer)
	if err != nil {
		return err
	}
	for _, module := range dashboard.AvailableModules(rt.viewer.Role) {
		fmt.Fprintf(rt.out, "%-22s %t\n", module, settings.ModuleEnabled(module))
	}
	return nil
}

type orderCmd struct {
	Get   orderGetCmd   `cmd:"" help:"Print the saved order."`
	Set   orderSetCmd   `cmd:"" help:"Replace the saved order. Unknown ids are dropped, missing widgets appended."`
	Reset orderResetCmd `cmd:"" help:"Clear the saved order so declaration order applies."`
}

type orderGetCmd struct {
	Context string `arg:"" optional:"" help:"Dashboard context (defaults to the role's)."`
}

func (cmd *orderGetCmd) Run(rt *runtime) error {
	order, err := rt.service.WidgetOrder(rt.ctx, rt.viewer, dashboard.DashboardContext(cmd.Context))
	if err != nil {
		return err
	}
	return printJSON(rt.out, order)
}

type orderSetCmd struct {
	Context string   `arg:"" help:"Dashboard context."`
	IDs     []string `arg:"" name:"widget" help:"Widget ids in the desired order."`
}

func (cmd *orderSetCmd) Run(rt *runtime) error {
	order, err := rt.service.ReorderWidgets(rt.ctx, rt.viewer, dashboard.DashboardContext(cmd.Context), cmd.IDs)
	if err != nil {
		return err
	}
	return printJSON(rt.out, order)
}

type orderResetCmd struct {
	Context string `arg:"" optional:"" help:"Dashboard context (defaults to the role's)."`
}

func (cmd *orderResetCmd) Run(rt *runtime) error {
	return rt.service.ResetWidgetOrder(rt.ctx, rt.viewer, dashboard.DashboardContext(cmd.Context))
}

type resetCmd struct{}

func (cmd *resetCmd) Run(rt *runtime) error {
	return rt.service.ResetSettings(rt.ctx, rt.viewer)
}

type exportCmd struct {
	Out string `short:"o" type:"path" help:"Write to a file instead of stdout."`
}

func (cmd *exportCmd) Run(rt *runtime) error {
	doc, err := rt.service.ExportSettings(rt.ctx, rt.viewer)
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		_, err = fmt.Fprintln(rt.out, doc)
		return err
	}
	if err := os.WriteFile(cmd.Out, []byte(doc+"\n"), 0o644); err != nil {
		return fmt.Errorf("boardctl: write %s: %w", cmd.Out, err)
	}
	return nil
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"Exported settings document."`
}

func (cmd *importCmd) Run(rt *runtime) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("boardctl: read %s: %w", cmd.File, err)
	}
	if err := rt.service.ImportSettings(rt.ctx, rt.viewer, string(data)); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "imported settings for %s\n", rt.viewer.UserID)
	return nil
}

type layoutCmd struct {
	Context string `arg:"" optional:"" help:"Dashboard context (defaults to the role's)."`
	JSON    bool   `help:"Print JSON instead of a table."`
}

func (cmd *layoutCmd) Run(rt *runtime) error {
	layout, err := rt.service.Layout(rt.ctx, rt.viewer, dashboard.DashboardContext(cmd.Context))
	if err != nil {
		return err
	}
	if cmd.JSON {
		return printJSON(rt.out, layout)
	}
	for _, widget := range layout.Widgets {
		fmt.Fprintf(rt.out, "%2d  %-30s %s\n", widget.Ordinal, widget.ID, widget.Title)
	}
	return nil
}

// parseModule matches user input against the known modules by snake_case
// form so camel, kebab and snake spellings are accepted.
func parseModule(input string) (dashboard.ModuleName, error) {
	want := strcase.ToSnake(strings.TrimSpace(input))
	for _, module := range dashboard.DefaultModules() {
		if strcase.ToSnake(string(module)) == want {
			return module, nil
		}
	}
	return "", fmt.Errorf("boardctl: unknown module %q", input)
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
