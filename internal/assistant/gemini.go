package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator responde uma mensagem usando o currículo como contexto.
type Generator interface {
	Generate(ctx context.Context, message string, resumePDF []byte) (string, error)
}

const DefaultSystemInstruction = `You are the personal assistant for the owner of this website and answer visitors' questions about their professional experience using the attached resume (PDF).

Be professional but light-hearted. If a question cannot be answered from the resume, say the details are not available there and suggest reaching out by email or LinkedIn.

Represent the owner's background accurately and highlight strengths and accomplishments relevant to potential employers.`

type GeminiGenerator struct {
	client *genai.Client
	model  string
	system string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model, systemInstruction string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		return nil, errors.New("gemini: model is required")
	}
	if systemInstruction == "" {
		systemInstruction = DefaultSystemInstruction
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, system: systemInstruction}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, message string, resumePDF []byte) (string, error) {
	parts := []*genai.Part{{Text: message}}
	if len(resumePDF) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     resumePDF,
			},
		})
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: g.system}},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("generate content: empty response")
	}
	return text, nil
}
