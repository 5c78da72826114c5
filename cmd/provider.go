package cmd

import (
	"fmt"
	"os"

	"github.com/cineverse-labs/cineverse/internal/catalog"
	"github.com/cineverse-labs/cineverse/internal/gateway"
	"github.com/cineverse-labs/cineverse/internal/gemini"
	"github.com/cineverse-labs/cineverse/internal/ollama"
	"github.com/cineverse-labs/cineverse/internal/openai"
	"github.com/cineverse-labs/cineverse/internal/providers"
)

func resolveProviderName(name string) string {
	if name == "" {
		name = os.Getenv("CINEVERSE_PROVIDER")
	}
	if name == "" {
		name = "gemini"
	}
	return name
}

func newProvider(name string) (providers.Provider, error) {
	switch name {
	case "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

func getDefaultModel(provider string) string {
	var env, fallback string
	switch provider {
	case "gemini":
		env, fallback = "GEMINI_MODEL", gemini.DefaultModel
	case "ollama":
		env, fallback = "OLLAMA_MODEL", ollama.DefaultModel
	case "openai":
		env, fallback = "OPENAI_MODEL", openai.DefaultModel
	default:
		return ""
	}
	if model := os.Getenv(env); model != "" {
		return model
	}
	return fallback
}

func newGateway(opts *options) (*gateway.Gateway, error) {
	name := resolveProviderName(opts.provider)
	provider, err := newProvider(name)
	if err != nil {
		return nil, err
	}

	model := opts.model
	if model == "" {
		model = getDefaultModel(name)
	}
	return gateway.New(provider, gateway.WithModel(model)), nil
}

func loadDefinitions(path string) ([]catalog.Definition, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}
