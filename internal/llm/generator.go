// Package llm holds the provider clients behind the single "generate" capability
// the analysis gateway depends on.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidCredential marks a provider rejection of the configured credential.
	ErrInvalidCredential = errors.New("llm: credential rejected by provider")
	// ErrEmptyResponse marks a successful call that produced no text.
	ErrEmptyResponse = errors.New("llm: provider returned no text")
)

// SchemaType enumerates the OpenAPI subset understood by every provider.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema describes the structured output a generator must produce.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSON renders the schema for providers that take it as prompt text.
func (s *Schema) JSON() string {
	if s == nil {
		return ""
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// Request is one structured generation call.
type Request struct {
	Instruction string
	Schema      *Schema
	Text        string
}

// Generator produces raw model text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
