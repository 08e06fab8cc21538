package plugins

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// FieldType selects how a submitted value is coerced.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldMarkdown FieldType = "markdown"
	FieldInteger  FieldType = "integer"
	FieldBoolean  FieldType = "boolean"
	FieldChoice   FieldType = "choice"
)

// Choice is one option of a FieldChoice field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a static descriptor of one plugin configuration key.
type Field struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required,omitempty"`
	Default   any       `json:"default,omitempty"`
	Choices   []Choice  `json:"choices,omitempty"`
	MaxLength int       `json:"max_length,omitempty"`
	Help      string    `json:"help,omitempty"`
}

// FormField pairs a descriptor with its initial value.
type FormField struct {
	Field
	Value any `json:"value"`
}

// Form is the generic editor surface built from a plugin's fields.
type Form struct {
	Plugin string      `json:"plugin"`
	Fields []FormField `json:"fields"`
}

// BuildForm seeds the plugin's fields with values from config, falling back
// to each field's default.
func BuildForm(plugin string, fields []Field, config map[string]any) Form {
	form := Form{Plugin: plugin, Fields: make([]FormField, 0, len(fields))}
	for _, field := range fields {
		value, ok := config[field.Name]
		if !ok {
			value = field.Default
		}
		form.Fields = append(form.Fields, FormField{Field: field, Value: value})
	}
	return form
}

// CleanForm coerces and validates submitted values against fields. The
// result holds one entry per field. Failures are returned as a ValidationError
// wrapping validation.Errors keyed by field name.
func CleanForm(fields []Field, submitted map[string]any) (map[string]any, error) {
	cleaned := make(map[string]any, len(fields))
	errs := validation.Errors{}

	for _, field := range fields {
		raw, present := submitted[field.Name]
		value, err := coerce(field, raw, present)
		if err != nil {
			errs[field.Name] = err
			continue
		}
		if err := validation.Validate(value, rulesFor(field)...); err != nil {
			errs[field.Name] = err
			continue
		}
		cleaned[field.Name] = value
	}

	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs, "invalid plugin configuration")
	}
	return cleaned, nil
}

// MergeConfig overlays cleaned values on the existing config. Keys not
// present in cleaned survive, so values from a previous plugin are kept.
func MergeConfig(existing, cleaned map[string]any) map[string]any {
	merged := maps.Clone(existing)
	if merged == nil {
		merged = make(map[string]any, len(cleaned))
	}
	maps.Copy(merged, cleaned)
	return merged
}

func rulesFor(field Field) []validation.Rule {
	rules := []validation.Rule{}
	if field.Required && field.Type != FieldBoolean {
		rules = append(rules, validation.Required.Error(field.label()+" is required"))
	}
	switch field.Type {
	case FieldText, FieldTextarea, FieldMarkdown:
		if field.MaxLength > 0 {
			rules = append(rules, validation.RuneLength(0, field.MaxLength))
		}
	case FieldChoice:
		if len(field.Choices) > 0 {
			allowed := make([]any, 0, len(field.Choices))
			for _, choice := range field.Choices {
				allowed = append(allowed, choice.Value)
			}
			rules = append(rules, validation.In(allowed...).Error("must be one of the listed choices"))
		}
	}
	return rules
}

func coerce(field Field, raw any, present bool) (any, error) {
	switch field.Type {
	case FieldBoolean:
		return coerceBool(raw, present)
	case FieldInteger:
		return coerceInt(raw)
	default:
		if raw == nil {
			return "", nil
		}
		if text, ok := raw.(string); ok {
			if field.Type == FieldText || field.Type == FieldChoice {
				return strings.TrimSpace(text), nil
			}
			return text, nil
		}
		return fmt.Sprint(raw), nil
	}
}

func coerceBool(raw any, present bool) (bool, error) {
	if !present || raw == nil {
		return false, nil
	}
	switch typed := raw.(type) {
	case bool:
		return typed, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "on", "yes":
			return true, nil
		case "", "0", "false", "off", "no":
			return false, nil
		}
	case float64:
		return typed != 0, nil
	case int:
		return typed != 0, nil
	}
	return false, validation.NewError("validation_is_bool", "must be a boolean")
}

func coerceInt(raw any) (any, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case float64:
		if typed != float64(int(typed)) {
			return nil, validation.NewError("validation_is_int", "must be a whole number")
		}
		return int(typed), nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil, nil
		}
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, validation.NewError("validation_is_int", "must be a whole number")
		}
		return value, nil
	}
	return nil, validation.NewError("validation_is_int", "must be a whole number")
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
