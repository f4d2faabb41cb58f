package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// DeclarationManifest models a YAML manifest of widget declarations per context.
type DeclarationManifest struct {
	Version  string            `json:"version" yaml:"version"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Contexts []ManifestContext `json:"contexts" yaml:"contexts"`
	Source   string            `json:"-" yaml:"-"`
}

// ManifestContext lists the widgets of one dashboard context in display order.
type ManifestContext struct {
	Code    DashboardContext `json:"code" yaml:"code"`
	Widgets []ManifestWidget `json:"widgets" yaml:"widgets"`
}

// ManifestWidget describes a single widget declaration.
type ManifestWidget struct {
	ID       string              `json:"id" yaml:"id"`
	Title    string              `json:"title" yaml:"title"`
	Requires ManifestRequirement `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// ManifestRequirement gates a widget on module toggles and capability flags.
// All listed entries must hold unless Any is set.
type ManifestRequirement struct {
	Modules      []ModuleName `json:"modules,omitempty" yaml:"modules,omitempty"`
	Capabilities []string     `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Any          bool         `json:"any,omitempty" yaml:"any,omitempty"`
}

// Requirement builds the predicate described by the manifest entry.
func (m ManifestRequirement) Requirement() Requirement {
	reqs := make([]Requirement, 0, len(m.Modules)+len(m.Capabilities))
	for _, module := range m.Modules {
		reqs = append(reqs, RequireModule(module))
	}
	for _, flag := range m.Capabilities {
		reqs = append(reqs, RequireCapability(flag))
	}
	switch {
	case len(reqs) == 0:
		return Always()
	case len(reqs) == 1:
		return reqs[0]
	case m.Any:
		return AnyOf(reqs...)
	default:
		return AllOf(reqs...)
	}
}

// Declarations converts the manifest widgets of a context.
func (c ManifestContext) Declarations() []WidgetDeclaration {
	out := make([]WidgetDeclaration, 0, len(c.Widgets))
	for _, widget := range c.Widgets {
		out = append(out, WidgetDeclaration{
			ID:       widget.ID,
			Title:    widget.Title,
			Requires: widget.Requires.Requirement(),
		})
	}
	return out
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*DeclarationManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument replaces the declarations of every context in the manifest.
func (r *Registry) LoadManifestDocument(doc *DeclarationManifest) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, dashCtx := range doc.Contexts {
		r.SetContext(dashCtx.Code, dashCtx.Declarations())
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*DeclarationManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*DeclarationManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc DeclarationManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *DeclarationManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	contexts := make(map[DashboardContext]struct{}, len(doc.Contexts))
	for ctxIdx, dashCtx := range doc.Contexts {
		if dashCtx.Code == "" {
			return fmt.Errorf("dashboard: manifest context at index %d is missing code", ctxIdx)
		}
		if _, exists := contexts[dashCtx.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates context %s", dashCtx.Code)
		}
		contexts[dashCtx.Code] = struct{}{}
		seen := make(map[string]struct{}, len(dashCtx.Widgets))
		for idx, widget := range dashCtx.Widgets {
			if widget.ID == "" {
				return fmt.Errorf("dashboard: manifest widget at %s[%d] is missing id", dashCtx.Code, idx)
			}
			if widget.Title == "" {
				return fmt.Errorf("dashboard: manifest widget %s missing title", widget.ID)
			}
			if _, exists := seen[widget.ID]; exists {
				return fmt.Errorf("dashboard: manifest duplicates widget %s in %s", widget.ID, dashCtx.Code)
			}
			seen[widget.ID] = struct{}{}
		}
	}
	return nil
}

func (doc *DeclarationManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
