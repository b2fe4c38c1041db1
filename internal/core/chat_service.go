package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/store"
)

// ChatService owns the history bookkeeping around a chat turn: the user's
// question is appended before the model is invoked, the assistant's reply
// after. The AnswerService in between never writes to the store.
type ChatService struct {
	conversations ConversationStore
	answers       *AnswerService
	logger        *zap.Logger
}

func NewChatService(conversations ConversationStore, answers *AnswerService, logger *zap.Logger) *ChatService {
	return &ChatService{conversations: conversations, answers: answers, logger: logger}
}

// PostMessage runs one chat turn for a document and returns the reply.
func (s *ChatService) PostMessage(ctx context.Context, documentID int64, question string) (string, error) {
	if err := s.conversations.AppendMessage(documentID, store.RoleUser, question); err != nil {
		return "", fmt.Errorf("failed to store user message: %w", err)
	}

	reply := s.answers.Answer(ctx, documentID, question)

	if err := s.conversations.AppendMessage(documentID, store.RoleAssistant, reply); err != nil {
		// The reply is already produced; losing the append is a history
		// gap, not a failed turn.
		s.logger.Error("failed to store assistant reply",
			zap.Int64("document_id", documentID), zap.Error(err))
	}
	return reply, nil
}
