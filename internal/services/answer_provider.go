package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// GenAIProvider answers questions with the Gemini API, feeding the static
// domain knowledge into the prompt.
type GenAIProvider struct {
	client    *genai.Client
	modelName string
}

func NewGenAIProvider(client *genai.Client, modelName string) *GenAIProvider {
	return &GenAIProvider{
		client:    client,
		modelName: modelName,
	}
}

func (p *GenAIProvider) GenerateAnswer(ctx context.Context, question, domainContext string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetMaxOutputTokens(500)
	model.SetTemperature(0.7)

	prompt := fmt.Sprintf(`Você é um assistente especializado em TOTVS Datasul e nos serviços da empresa Sensus.

%s

INSTRUÇÕES:
- Responda sempre em português brasileiro
- Seja preciso e técnico quando necessário
- Se não souber algo específico, seja honesto e sugira contatar a Sensus
- Mantenha um tom profissional e prestativo

PERGUNTA: %s`, domainContext, question)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			answer.WriteString(string(text))
		}
	}
	if answer.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return strings.TrimSpace(answer.String()), nil
}
