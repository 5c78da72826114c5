package providers

import (
	"context"
)

//go:generate mockgen -source=providers.go -destination=mocks/provider_mock.go -package=mocks

// Type is the JSON type of a schema node
type Type string

const (
	TypeString Type = "string"
	TypeArray  Type = "array"
	TypeObject Type = "object"
)

// Schema describes the structured output a provider must return
type Schema struct {
	Type       Type
	Items      *Schema
	Properties map[string]*Schema
	Required   []string
}

// JSON renders the schema in JSON Schema form for providers that take one
func (s *Schema) JSON() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Items != nil {
		out["items"] = s.Items.JSON()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSON()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// Config represents the configuration for a single generation request
type Config struct {
	Model string
	// Temperature is left to the provider's default when nil
	Temperature *float64
	Prompt      string
	// ResponseSchema asks for JSON output matching the schema when set
	ResponseSchema *Schema
}

// Provider defines the interface for a text-generation provider
type Provider interface {
	GenerateText(ctx context.Context, config Config) (string, error)
}

// Float64 is a helper for setting Config.Temperature
func Float64(v float64) *float64 {
	return &v
}
