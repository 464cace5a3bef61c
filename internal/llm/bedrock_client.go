package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient implements Generator over the Bedrock Converse API. Bedrock has
// no response-schema parameter, so the schema travels in the system prompt.
type BedrockClient struct {
	api     bedrockConverseAPI
	modelID string
}

func NewBedrockClient(api bedrockConverseAPI, modelID string) (*BedrockClient, error) {
	if api == nil {
		return nil, errors.New("llm: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("llm: bedrock model id is required")
	}
	return &BedrockClient{api: api, modelID: modelID}, nil
}

func (c *BedrockClient) Generate(ctx context.Context, req Request) (string, error) {
	var system []brtypes.SystemContentBlock
	if instruction := bedrockSystemPrompt(req); instruction != "" {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: instruction})
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System:  system,
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.Text}},
		}},
	})
	if err != nil {
		return "", classifyBedrockError(err)
	}

	text := bedrockOutputText(out)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func bedrockSystemPrompt(req Request) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(req.Instruction); s != "" {
		parts = append(parts, s)
	}
	if req.Schema != nil {
		parts = append(parts, "Respond with a single JSON object that conforms to this JSON schema:\n"+req.Schema.JSON())
	}
	return strings.Join(parts, "\n\n")
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(textBlock.Value)
		}
	}
	return b.String()
}

var bedrockCredentialCodes = map[string]struct{}{
	"UnrecognizedClientException": {},
	"AccessDeniedException":       {},
	"InvalidSignatureException":   {},
	"ExpiredTokenException":       {},
}

func classifyBedrockError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := bedrockCredentialCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
	}
	return fmt.Errorf("llm: bedrock generation failed: %w", err)
}
