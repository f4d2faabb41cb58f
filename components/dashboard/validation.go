package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const settingsSchemaName = "user-settings.json"

// settingsSchema describes the exported record. Only userId and
// dashboardModules are required; preference fields fall back to defaults.
var settingsSchema = map[string]any{
	"type":     "object",
	"required": []string{"userId", "dashboardModules"},
	"properties": map[string]any{
		"userId": map[string]any{"type": "string", "minLength": 1},
		"dashboardModules": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "boolean"},
		},
		"widgetOrder": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"uniqueItems": true,
			},
		},
		"sidebarCollapsed": map[string]any{"type": "boolean"},
		"theme":            map[string]any{"type": "string", "enum": []string{string(ThemeLight), string(ThemeDark)}},
		"notifications": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email": map[string]any{"type": "boolean"},
				"push":  map[string]any{"type": "boolean"},
				"inApp": map[string]any{"type": "boolean"},
			},
		},
		"dateFormat": map[string]any{"type": "string", "enum": []string{DateFormatUS, DateFormatEU, DateFormatISO}},
		"timezone":   map[string]any{"type": "string"},
	},
}

// SettingsValidator checks serialized settings before they are committed.
type SettingsValidator interface {
	ValidateDocument(doc any) error
}

// JSONSchemaValidator compiles the settings schema once and validates decoded documents.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// ValidateDocument validates a generic JSON document (as produced by json.Unmarshal into any).
func (v *JSONSchemaValidator) ValidateDocument(doc any) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return newValidationError(schemaField(verr), verr.Message, err)
		}
		return newValidationError("", err.Error(), err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(settingsSchema)
		if err != nil {
			v.err = fmt.Errorf("dashboard: marshal settings schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(settingsSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("dashboard: load settings schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(settingsSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile settings schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

// schemaField walks to the most specific cause and returns its JSON pointer.
func schemaField(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return strings.TrimPrefix(verr.InstanceLocation, "/")
}

// ValidatePreferences checks preference values that the reducer will accept.
func ValidatePreferences(patch PreferencesPatch) error {
	if patch.Theme != nil && *patch.Theme != ThemeLight && *patch.Theme != ThemeDark {
		return newValidationError("theme", fmt.Sprintf("unsupported theme %q", *patch.Theme), nil)
	}
	if patch.DateFormat != nil && !slices.Contains([]string{DateFormatUS, DateFormatEU, DateFormatISO}, *patch.DateFormat) {
		return newValidationError("dateFormat", fmt.Sprintf("unsupported date format %q", *patch.DateFormat), nil)
	}
	if patch.Timezone != nil && strings.TrimSpace(*patch.Timezone) == "" {
		return newValidationError("timezone", "timezone cannot be empty", nil)
	}
	return nil
}
