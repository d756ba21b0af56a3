// File: internal/docgen/docgen.go

// Package docgen turns a captured page into requirements documentation via
// the Gemini API. Large markup is chunked, analyzed per chunk, and
// consolidated with a follow-up prompt.
package docgen

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Generator implements schemas.DocGenerator against the Gemini API.
type Generator struct {
	model  string
	apiKey string
	logger *zap.Logger
}

var _ schemas.DocGenerator = (*Generator)(nil)

// New creates a generator. The API key is required: documentation
// generation has no offline fallback.
func New(cfg config.GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generator API key is required: set GOOGLE_AI_API_KEY or generator.api_key in the config file")
	}
	return &Generator{
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: logger.Named("docgen"),
	}, nil
}

// Generate produces a markdown requirements document for the captured page.
func (g *Generator) Generate(ctx context.Context, input schemas.DocInput) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create generation client: %w", err)
	}

	chunks := chunkContent(input.DOMContent)
	g.logger.Info("Generating requirements documentation.",
		zap.String("url", input.URL), zap.Int("chunks", len(chunks)))

	sections := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := g.generate(ctx, client, chunkPrompt(input, chunk, i+1, len(chunks)))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d generation failed: %w", i+1, len(chunks), err)
		}
		sections = append(sections, markdownOf(text))
	}

	combined := strings.Join(sections, "\n\n---\n\n")
	if len(chunks) == 1 {
		return combined, nil
	}

	// Multiple chunks produce fragmented sections; a consolidation pass
	// merges them into one coherent document.
	text, err := g.generate(ctx, client, consolidatePrompt(combined))
	if err != nil {
		return "", fmt.Errorf("consolidation failed: %w", err)
	}
	return markdownOf(text), nil
}

func (g *Generator) generate(ctx context.Context, client *genai.Client, prompt string) (string, error) {
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 8192,
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model returned no content")
	}
	return text, nil
}

func chunkPrompt(input schemas.DocInput, chunk string, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this Chukyo University web portal page and generate requirements documentation.

URL: %s
DOM Content (Part %d/%d):
%s
`, input.URL, index, total, chunk)

	if len(input.NetworkLogs) > 0 {
		if logs, err := json.MarshalIndent(input.NetworkLogs, "", "  "); err == nil {
			fmt.Fprintf(&b, "\nNetwork API Calls: %s\n", logs)
		}
	}

	b.WriteString(`
Please analyze this page and respond in JSON format with:
{
  "markdown": "Requirements documentation in markdown format with:
    - ### Screen Name heading
    - Table of main selectors and their purposes
    - List of key functionality
    - API endpoints discovered (if any)
    - User interaction patterns"
}

Focus on extracting actionable requirements for automation and testing.
`)
	return b.String()
}

func consolidatePrompt(combined string) string {
	return fmt.Sprintf(`Combine and summarize these analysis results into a single cohesive requirements document:

%s

Respond in JSON format:
{
  "markdown": "Final consolidated requirements documentation"
}
`, combined)
}

// markdownOf unwraps the requested {"markdown": ...} envelope. Models do not
// always honor the format, so a response that is not valid JSON is taken as
// the markdown itself.
func markdownOf(text string) string {
	var envelope struct {
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Markdown != "" {
		return envelope.Markdown
	}
	return text
}
