package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/store"
	"github.com/intellidocs/intellidocs/internal/vector"
)

const (
	searchSystemPrompt = "You are an assistant for 'intelliDocs'. Your task is to answer questions based ONLY on the provided context. " +
		"Do not use any outside knowledge. If the answer is not in the context, state that clearly."

	chatSystemPrompt = "You are 'intelliDocs', a helpful AI assistant. The user is asking a conversational question. " +
		"Answer them based on the provided chat history in third person. Be friendly and direct."

	// NoRelevantInfoReply answers a search-routed question whose document
	// yielded no chunks. It is returned without invoking the model.
	NoRelevantInfoReply = "I couldn't find any relevant information in that document to answer your question."

	// ModelErrorReply is the user-safe stand-in for any capability outage
	// during a chat turn. Raw error text never reaches the user.
	ModelErrorReply = "An error occurred while trying to get an answer from the model."

	contextSeparator = "\n\n---\n\n"
)

// AnswerService assembles the bounded conversational prompt for a chat turn
// and invokes the generative capability. It does not persist anything;
// history bookkeeping belongs to ChatService.
type AnswerService struct {
	conversations ConversationStore
	router        *Router
	embedder      Embedder
	index         vector.Index
	completer     Completer
	logger        *zap.Logger
	topK          int
	historyWindow int
}

func NewAnswerService(conversations ConversationStore, router *Router, embedder Embedder, index vector.Index, completer Completer, topK, historyWindow int, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		conversations: conversations,
		router:        router,
		embedder:      embedder,
		index:         index,
		completer:     completer,
		logger:        logger,
		topK:          topK,
		historyWindow: historyWindow,
	}
}

// Answer produces the reply for one chat turn. Every failure path maps to a
// fixed reply; a chat turn never surfaces an internal error to the user.
func (s *AnswerService) Answer(ctx context.Context, documentID int64, question string) string {
	log := s.logger.With(zap.Int64("document_id", documentID))

	history, err := s.conversations.History(documentID)
	if err != nil {
		log.Warn("failed to load conversation history, proceeding without it", zap.Error(err))
		history = nil
	}
	// Bound the prompt: long conversations keep only the trailing window.
	if len(history) > s.historyWindow {
		history = history[len(history)-s.historyWindow:]
	}

	decision := s.router.Route(ctx, history, question)
	log.Debug("routed question", zap.String("decision", string(decision)))

	var messages []store.Message
	if decision == DecisionSearch {
		chunks, err := s.retrieve(ctx, documentID, question)
		if err != nil {
			log.Error("failed to embed question for retrieval", zap.Error(err))
			return ModelErrorReply
		}
		if len(chunks) == 0 {
			return NoRelevantInfoReply
		}
		messages = append(messages, store.Message{Role: store.RoleSystem, Content: searchSystemPrompt})
		messages = append(messages, history...)
		messages = append(messages, store.Message{
			Role:    store.RoleUser,
			Content: fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s", strings.Join(chunks, contextSeparator), question),
		})
	} else {
		messages = append(messages, store.Message{Role: store.RoleSystem, Content: chatSystemPrompt})
		messages = append(messages, history...)
		messages = append(messages, store.Message{Role: store.RoleUser, Content: question})
	}

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		log.Error("completion failed", zap.Error(err))
		return ModelErrorReply
	}
	return reply
}

// retrieve embeds the question and queries the document's chunks. An
// embedding outage is an error; an index query failure is logged and
// treated as zero results so the turn continues.
func (s *AnswerService) retrieve(ctx context.Context, documentID int64, question string) ([]string, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vector for question", ErrEmbeddingUnavailable)
	}

	chunks, err := s.index.Query(ctx, documentID, vectors[0], s.topK)
	if err != nil {
		s.logger.Warn("index query failed, treating as no results",
			zap.Int64("document_id", documentID),
			zap.Error(fmt.Errorf("%w: %v", ErrIndexQuery, err)))
		return nil, nil
	}
	return chunks, nil
}
