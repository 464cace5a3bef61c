package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model ID is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements Generator using Google's Gemini API with JSON
// structured output.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		modelID: modelID,
	}, nil
}

// ModelID reports the configured model.
func (c *GeminiClient) ModelID() string { return c.modelID }

// Generate sends the transcript with the system instruction and response schema.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	// GenerativeModel carries mutable config, so build one per call.
	model := c.client.GenerativeModel(c.modelID)
	if strings.TrimSpace(req.Instruction) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.Instruction))
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGeminiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Text))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := geminiResponseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
	}
	if strings.Contains(err.Error(), "API key not valid") {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return fmt.Errorf("llm: gemini generation failed: %w", err)
}

var geminiTypes = map[SchemaType]genai.Type{
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
	TypeString:  genai.TypeString,
	TypeInteger: genai.TypeInteger,
	TypeNumber:  genai.TypeNumber,
	TypeBoolean: genai.TypeBoolean,
}

func toGeminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiTypes[s.Type],
		Description: s.Description,
		Items:       toGeminiSchema(s.Items),
		Required:    append([]string(nil), s.Required...),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}
