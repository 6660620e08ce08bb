// Package validation checks outbound responses against the smart-home v3
// response schema before they leave the process.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var embeddedSchema []byte

const schemaURL = "aurora-response.json"

// Validator validates response envelopes against a compiled JSON Schema.
//
// Thread Safety: A compiled Validator is read-only and safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the embedded response schema.
func New() (*Validator, error) {
	return compile(embeddedSchema)
}

// NewFromFile compiles a schema read from path instead of the embedded one.
func NewFromFile(path string) (*Validator, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return compile(data)
}

func compile(data []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks response against the schema. When the response carries a
// correlation token it must match the one in request.
//
// Both arguments may be any JSON-marshallable value, including raw JSON.
func (v *Validator) Validate(request, response any) error {
	doc, err := toGeneric(response)
	if err != nil {
		return fmt.Errorf("%w: encoding response: %w", ErrSchemaViolation, err)
	}

	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	echoed := lookupString(doc, "event", "header", "correlationToken")
	if echoed == "" {
		return nil
	}

	reqDoc, err := toGeneric(request)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %w", ErrCorrelationMismatch, err)
	}
	if want := lookupString(reqDoc, "directive", "header", "correlationToken"); echoed != want {
		return fmt.Errorf("%w: got %q, want %q", ErrCorrelationMismatch, echoed, want)
	}
	return nil
}

// Disabled is a validator that accepts every response.
type Disabled struct{}

// Validate always returns nil.
func (Disabled) Validate(_, _ any) error { return nil }

func toGeneric(v any) (any, error) {
	var data []byte
	switch t := v.(type) {
	case []byte:
		data = t
	case json.RawMessage:
		data = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = b
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lookupString(doc any, path ...string) string {
	cur := doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return s
}
