package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/intellidocs/intellidocs/internal/store"
)

const (
	defaultChatModelName      = "gemini-1.5-flash-latest"
	defaultEmbeddingModelName = "text-embedding-004"
)

// LLMService wraps the shared Gemini client behind the Embedder and
// Completer capabilities. One instance is constructed at startup and
// injected everywhere; it is never re-created per call.
type LLMService struct {
	client *genai.Client
	logger *zap.Logger
}

var (
	_ Embedder  = (*LLMService)(nil)
	_ Completer = (*LLMService)(nil)
)

func NewLLMService(ctx context.Context, apiKey string, logger *zap.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client, logger: logger}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("error closing GenAI client", zap.Error(err))
		}
	}
}

// EmbedTexts embeds all texts in a single batch request and returns one
// vector per input, in input order. Any failure wraps
// ErrEmbeddingUnavailable so callers can abort without partially indexing.
func (s *LLMService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := s.client.EmbeddingModel(defaultEmbeddingModelName)
	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini batch embedding request failed: %v", ErrEmbeddingUnavailable, err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: embedding count does not match input count", ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: no embedding data for input %d", ErrEmbeddingUnavailable, i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Complete sends an assembled message sequence to the chat model. System
// messages become the model's system instruction; the trailing user message
// is sent against the remaining history. Failures wrap
// ErrGenerationUnavailable.
func (s *LLMService) Complete(ctx context.Context, messages []store.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: message sequence is empty", ErrGenerationUnavailable)
	}

	model := s.client.GenerativeModel(defaultChatModelName)

	var history []*genai.Content
	var systemParts []genai.Part
	for _, msg := range messages {
		switch msg.Role {
		case store.RoleSystem:
			systemParts = append(systemParts, genai.Text(msg.Content))
		case store.RoleUser:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		case store.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return "", fmt.Errorf("%w: message sequence must end with a user message", ErrGenerationUnavailable)
	}

	last := history[len(history)-1]
	session := model.StartChat()
	session.History = history[:len(history)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini chat request failed: %v", ErrGenerationUnavailable, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrGenerationUnavailable)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.logger.Debug("skipping non-text response part", zap.String("type", fmt.Sprintf("%T", part)))
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text parts", ErrGenerationUnavailable)
	}
	return responseText.String(), nil
}
