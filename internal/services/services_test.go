package services

import (
	"context"
	"sync"

	"chatroom-backend/internal/models"
)

// stubGenerator records every request and answers with reply or err.
type stubGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []GenerationRequest
	deadline bool
}

func (g *stubGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	_, g.deadline = ctx.Deadline()
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func ptr[T any](v T) *T { return &v }

func userTurn(content string) models.Turn {
	return models.Turn{Role: models.RoleUser, Content: content}
}

func assistantTurn(content string) models.Turn {
	return models.Turn{Role: models.RoleAssistant, Content: content}
}
