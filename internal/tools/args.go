package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"ou-videos-mcp/internal/video"
)

// Args holds the arguments of a single tools/call after defaults are applied.
type Args map[string]any

// prepareArgs copies raw, treats explicit nulls as absent, enforces required
// parameters, fills defaults and checks value types against the schema.
func prepareArgs(def Definition, raw map[string]any) (Args, error) {
	args := make(Args, len(raw)+len(def.InputSchema.Properties))
	for k, v := range raw {
		if v != nil {
			args[k] = v
		}
	}
	for _, name := range def.InputSchema.Required {
		if _, ok := args[name]; !ok {
			return nil, &ExecutionError{Message: "missing required parameter: " + name}
		}
	}
	for name, prop := range def.InputSchema.Properties {
		if _, ok := args[name]; !ok && prop.Default != nil {
			args[name] = prop.Default
		}
	}
	if err := validateArgs(def, args); err != nil {
		return nil, err
	}
	return args, nil
}

// validateArgs checks declared parameters for type. Unknown parameters are
// ignored, and required parameters were already checked by the caller.
func validateArgs(def Definition, args Args) error {
	props := make(map[string]any, len(def.InputSchema.Properties))
	for name, prop := range def.InputSchema.Properties {
		props[name] = map[string]any{"type": prop.Type}
	}
	schemaLoader := gojsonschema.NewGoLoader(map[string]any{
		"type":       schemaTypeObject,
		"properties": props,
	})
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(map[string]any(args)))
	if err != nil {
		return &ExecutionError{Message: fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	sort.Strings(errs)
	return &ExecutionError{Message: "invalid arguments: " + strings.Join(errs, "; ")}
}

// String returns a string argument, or "" when it is unset.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns a numeric argument truncated toward zero, or 0 when unset.
func (a Args) Int(name string) int {
	switch v := a[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		switch {
		case math.IsNaN(v):
			return 0
		case v > math.MaxInt32:
			return math.MaxInt32
		case v < math.MinInt32:
			return math.MinInt32
		}
		return int(v)
	}
	return 0
}

// Limit returns the limit argument capped at video.MaxLimit. Values at or
// below zero are left alone.
func (a Args) Limit() int {
	limit := a.Int("limit")
	if limit > video.MaxLimit {
		return video.MaxLimit
	}
	return limit
}
