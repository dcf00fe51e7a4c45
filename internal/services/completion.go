package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatroom-backend/internal/models"
)

var ErrEmptyReply = errors.New("provider returned an empty reply")

type CompletionKind int

const (
	CompletionOK CompletionKind = iota
	// CompletionEmptyPrompt means there was no user message to send.
	CompletionEmptyPrompt
	// CompletionProviderError means the provider call failed; Err holds the cause.
	CompletionProviderError
)

// Completion is the outcome of one gateway call. Text is set only for CompletionOK.
type Completion struct {
	Kind CompletionKind
	Text string
	Err  error
}

// CompletionGateway turns a transcript into a provider reply.
type CompletionGateway struct {
	generator      TextGenerator
	timeout        time.Duration
	forwardHistory bool
}

// NewCompletionGateway builds a gateway. A zero timeout leaves the provider call
// bounded only by the caller's context. With forwardHistory unset only the latest
// user message reaches the provider.
func NewCompletionGateway(generator TextGenerator, timeout time.Duration, forwardHistory bool) *CompletionGateway {
	return &CompletionGateway{
		generator:      generator,
		timeout:        timeout,
		forwardHistory: forwardHistory,
	}
}

func (g *CompletionGateway) Complete(ctx context.Context, turns []models.Turn) Completion {
	idx := lastUserTurn(turns)
	if idx < 0 || turns[idx].Content == "" {
		return Completion{Kind: CompletionEmptyPrompt}
	}

	req := GenerationRequest{Prompt: turns[idx].Content}
	if g.forwardHistory {
		var system []string
		for _, turn := range turns[:idx] {
			if turn.Role == models.RoleSystem {
				system = append(system, turn.Content)
				continue
			}
			req.History = append(req.History, turn)
		}
		req.SystemPrompt = strings.Join(system, "\n")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.generator.Generate(ctx, req)
	if err != nil {
		return Completion{Kind: CompletionProviderError, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Completion{Kind: CompletionProviderError, Err: ErrEmptyReply}
	}
	return Completion{Kind: CompletionOK, Text: text}
}

// lastUserTurn returns the index of the most recent user turn, or -1.
func lastUserTurn(turns []models.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleUser {
			return i
		}
	}
	return -1
}
