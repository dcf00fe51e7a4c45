package services

import (
	"context"
	"fmt"
	"log"

	"chatroom-backend/internal/models"
)

const EmptyPromptReply = "我沒有收到訊息，再試一次？"

const providerFailureReplyFormat = "(LLM 呼叫失敗：%v)"

type ConversationStore interface {
	Get(username string) []models.Turn
	Append(username string, turns ...models.Turn) []models.Turn
}

type Completer interface {
	Complete(ctx context.Context, turns []models.Turn) Completion
}

type ChatService struct {
	conversations ConversationStore
	completer     Completer
	systemPrompt  string
}

func NewChatService(conversations ConversationStore, completer Completer, systemPrompt string) *ChatService {
	return &ChatService{
		conversations: conversations,
		completer:     completer,
		systemPrompt:  systemPrompt,
	}
}

// Chat runs one turn for username. The reply is always set: provider failures
// become an in-band reply instead of an error.
func (s *ChatService) Chat(ctx context.Context, username, message string, remember bool) (*models.ChatResponse, error) {
	if username == "" {
		return nil, &UnauthorizedError{Message: "Invalid user"}
	}

	prior := s.conversations.Get(username)
	latest := models.Turn{Role: models.RoleUser, Content: message}

	messages := make([]models.Turn, 0, len(prior)+2)
	messages = append(messages, models.Turn{Role: models.RoleSystem, Content: s.systemPrompt})
	if remember {
		messages = append(messages, prior...)
	}
	messages = append(messages, latest)

	completion := s.completer.Complete(ctx, messages)
	if completion.Kind == CompletionProviderError {
		log.Printf("chat: provider failure for %s: %v", username, completion.Err)
	}
	reply := ReplyText(completion)

	history := []models.Turn{}
	if remember {
		history = s.conversations.Append(username,
			latest,
			models.Turn{Role: models.RoleAssistant, Content: reply},
		)
	}

	return &models.ChatResponse{Reply: reply, History: history}, nil
}

// ReplyText converts a completion into the text returned to the client.
func ReplyText(c Completion) string {
	switch c.Kind {
	case CompletionOK:
		return c.Text
	case CompletionEmptyPrompt:
		return EmptyPromptReply
	default:
		return fmt.Sprintf(providerFailureReplyFormat, c.Err)
	}
}
