package validation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the subset of JSON Schema the console declares in Go.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual failures into one message.
func (r *ValidationResult) Error() string {
	if r == nil || r.Valid {
		return ""
	}
	msg := ""
	for i, e := range r.Errors {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return msg
}

// Validator holds a compiled schema and can be shared between goroutines.
type Validator struct {
	schema *gojsonschema.Schema
}

// Compile prepares a schema for repeated validation.
func Compile(schema JSONSchema) (*Validator, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ValidateBytes validates a raw JSON document.
func (v *Validator) ValidateBytes(document []byte) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateValue validates an already decoded Go value.
func (v *Validator) ValidateValue(document interface{}) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewGoLoader(document))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if f, ok := desc.Details()["property"].(string); ok {
				field = f
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// EnvelopeSchema describes the backend response wrapper {code, message, data}.
var EnvelopeSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"code": {Type: "integer", Description: "business status, 200 on success"},
	},
	Required: []string{"code"},
}

var (
	envelopeOnce      sync.Once
	envelopeValidator *Validator
	envelopeErr       error
)

// Envelope returns the shared compiled envelope validator.
func Envelope() (*Validator, error) {
	envelopeOnce.Do(func() {
		envelopeValidator, envelopeErr = Compile(EnvelopeSchema)
	})
	return envelopeValidator, envelopeErr
}
