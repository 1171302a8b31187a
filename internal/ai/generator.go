package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"siteforge_server/internal/ai/prompts"
	"siteforge_server/internal/faults"
	"siteforge_server/internal/types"
)

const (
	// DefaultTimeout bounds the single model attempt; on expiry the
	// generator falls back instead of retrying.
	DefaultTimeout = 30 * time.Second

	// priorExcerptLen caps how much of each prior artifact field is sent
	// back to the model as refinement context.
	priorExcerptLen = 500
)

type Generator struct {
	client     *openai.Client
	modelID    string
	timeout    time.Duration
	configured bool
}

// NewGenerator builds a generator backed by the OpenAI chat-completion API.
// An empty apiKey is a supported configuration: every call then returns
// fallback content with ConfigurationMissing as the cause.
func NewGenerator(apiKey string, modelID string) *Generator {
	if modelID == "" {
		modelID = openai.GPT4o
	}
	return &Generator{
		client:     openai.NewClient(apiKey),
		modelID:    modelID,
		timeout:    DefaultTimeout,
		configured: apiKey != "",
	}
}

// NewGeneratorWithClient is used by tests to point the generator at a fake
// completion endpoint.
func NewGeneratorWithClient(client *openai.Client, modelID string, timeout time.Duration) *Generator {
	return &Generator{
		client:     client,
		modelID:    modelID,
		timeout:    timeout,
		configured: true,
	}
}

// Configured reports whether a generator credential is present.
func (g *Generator) Configured() bool {
	return g.configured
}

// modelArtifact is the JSON shape the system prompt asks the model for.
type modelArtifact struct {
	HTML    string `json:"html"`
	CSS     string `json:"css"`
	JS      string `json:"js"`
	Message string `json:"message"`
}

// Generate produces an Artifact for the description. It never fails outward:
// one model attempt within the timeout, then field-by-field fallback. A field
// the model did supply is always kept, even when its siblings are missing.
func (g *Generator) Generate(ctx context.Context, description string, prior *types.Artifact) types.GenerateResult {
	if !g.configured {
		log.Println("WARN: OpenAI API key not configured, using fallback site template.")
		return fullFallback(description, faults.ErrConfigurationMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.GetSiteGenerationPrompt()},
	}
	if prior != nil {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem,
			Content: prompts.GetRefinementContext(
				excerpt(prior.HTML), excerpt(prior.CSS), excerpt(prior.JS)),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: description,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.modelID,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   4096,
		Temperature: 0.3, // Lower temperature for more predictable code generation
	})
	if err != nil {
		cause := faults.Classify(err)
		log.Printf("OpenAI chat completion failed (%v), using fallback site template. Error: %v", cause, err)
		return fullFallback(description, cause)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Printf("OpenAI returned empty response, using fallback site template. Usage: %+v", resp.Usage)
		return fullFallback(description, faults.ErrMalformedResponse)
	}

	var parsed modelArtifact
	cleaned := stripCodeFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		log.Printf("Failed to parse LLM JSON output (%v), using fallback site template. Output: %.200s", err, cleaned)
		return fullFallback(description, faults.ErrMalformedResponse)
	}

	return mergeWithFallback(description, parsed)
}

// Chat runs a conversational generation turn. It is the same single model
// attempt as Generate; the assistant message is whatever summary accompanies
// the artifact.
func (g *Generator) Chat(ctx context.Context, message string, prior *types.Artifact) (string, types.GenerateResult) {
	result := g.Generate(ctx, message, prior)
	assistant := result.Artifact.SummaryMessage
	if assistant == "" {
		assistant = "Here is the site I generated for you."
	}
	return assistant, result
}

// mergeWithFallback keeps every field the model supplied and substitutes the
// fallback value for each missing one. This partial substitution is what
// distinguishes a degraded response from a total failure.
func mergeWithFallback(description string, parsed modelArtifact) types.GenerateResult {
	artifact := types.Artifact{
		HTML:           parsed.HTML,
		CSS:            parsed.CSS,
		JS:             parsed.JS,
		SummaryMessage: parsed.Message,
	}

	var degradedFields []string
	if strings.TrimSpace(artifact.HTML) == "" || strings.TrimSpace(artifact.CSS) == "" || strings.TrimSpace(artifact.JS) == "" {
		fb := FallbackArtifact(description)
		if strings.TrimSpace(artifact.HTML) == "" {
			artifact.HTML = fb.HTML
			degradedFields = append(degradedFields, "html")
		}
		if strings.TrimSpace(artifact.CSS) == "" {
			artifact.CSS = fb.CSS
			degradedFields = append(degradedFields, "css")
		}
		if strings.TrimSpace(artifact.JS) == "" {
			artifact.JS = fb.JS
			degradedFields = append(degradedFields, "js")
		}
	}

	if artifact.SummaryMessage == "" {
		artifact.SummaryMessage = fmt.Sprintf("I generated a website based on your description: %s", description)
	}

	if len(degradedFields) > 0 {
		log.Printf("LLM response was missing fields %v; substituted fallback content for those fields only.", degradedFields)
		return types.GenerateResult{
			Artifact:       artifact,
			Degraded:       true,
			DegradedFields: degradedFields,
			Cause:          faults.ErrMalformedResponse,
		}
	}
	return types.GenerateResult{Artifact: artifact}
}

func fullFallback(description string, cause error) types.GenerateResult {
	return types.GenerateResult{
		Artifact:       FallbackArtifact(description),
		Degraded:       true,
		DegradedFields: []string{"html", "css", "js"},
		Cause:          cause,
	}
}

// stripCodeFences removes a ```json ... ``` wrapper when the model ignores
// the structured-output flag and fences its answer anyway.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func excerpt(s string) string {
	if len(s) <= priorExcerptLen {
		return s
	}
	return s[:priorExcerptLen]
}
