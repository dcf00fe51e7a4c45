package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chatroom-backend/internal/models"
)

// GenerationRequest is what the gateway hands to a text provider.
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	History      []models.Turn // prior turns, oldest first, prompt excluded
}

// TextGenerator is an external text-generation provider.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}

	// Token bucket for concurrent provider calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate sends a single prompt, or a chat session when history or a system
// prompt is supplied.
func (s *GeminiService) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if req.SystemPrompt == "" && len(req.History) == 0 {
		resp, err = model.GenerateContent(ctx, genai.Text(req.Prompt))
	} else {
		if req.SystemPrompt != "" {
			model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
		}
		cs := model.StartChat()
		cs.History = toContents(req.History)
		resp, err = cs.SendMessage(ctx, genai.Text(req.Prompt))
	}
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return extractText(resp), nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// toContents maps stored turns onto Gemini roles. System turns travel as the
// system instruction and empty turns are rejected by the API, so both are dropped.
func toContents(turns []models.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		var role string
		switch turn.Role {
		case models.RoleUser:
			role = "user"
		case models.RoleAssistant:
			role = "model"
		default:
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return contents
}
