package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/store"
)

// Decision is the per-turn routing outcome. It is derived and discarded;
// nothing persists it.
type Decision string

const (
	DecisionSearch Decision = "search"
	DecisionChat   Decision = "chat"
)

// routerHistoryWindow bounds how much history the classifier sees, keeping
// routing latency constant regardless of conversation length.
const routerHistoryWindow = 3

const routerPromptTemplate = `You are a 'router' AI. Your job is to classify the user's latest question.
The user is in a chat about a document.

Here is the chat history (in JSON):
%s

Here is the new user question:
"%s"

Your task is to decide if this question requires searching the document for context.

Respond with the single word 'search' or 'chat'.

- Respond 'search' if the question is about the *content* of the document.
  (e.g., 'What is X?', 'Summarize paragraph Y', 'Who is Jane in the document?')

- Respond 'chat' if the question is *conversational* or *about the chat itself*.
  (e.g., 'Hello', 'Thanks!', 'You are helpful', 'That's wrong', 'Can you repeat that?')

**CRUCIAL RULE:** A question about the *conversation history* (like 'What was my first question?' or 'What did you just say?') is **ALWAYS** 'chat'.`

// Router classifies an incoming question as needing document retrieval
// ("search") or not ("chat").
type Router struct {
	completer Completer
	logger    *zap.Logger
}

func NewRouter(completer Completer, logger *zap.Logger) *Router {
	return &Router{completer: completer, logger: logger}
}

// Route classifies the question against the trailing routerHistoryWindow
// messages. If the classifier is unavailable or its reply names neither
// decision, the result is DecisionSearch: failing toward extra retrieval is
// safe, silently skipping it is not.
func (r *Router) Route(ctx context.Context, history []store.Message, question string) Decision {
	prompt := fmt.Sprintf(routerPromptTemplate, historySnippet(history), question)

	reply, err := r.completer.Complete(ctx, []store.Message{
		{Role: store.RoleUser, Content: prompt},
	})
	if err != nil {
		r.logger.Warn("router classification failed, defaulting to search", zap.Error(err))
		return DecisionSearch
	}

	decision := strings.ToLower(strings.TrimSpace(reply))
	switch {
	case strings.Contains(decision, string(DecisionSearch)):
		return DecisionSearch
	case strings.Contains(decision, string(DecisionChat)):
		return DecisionChat
	default:
		r.logger.Warn("unparseable router reply, defaulting to search", zap.String("reply", reply))
		return DecisionSearch
	}
}

// historySnippet renders the last routerHistoryWindow messages as compact
// JSON for the classification prompt.
func historySnippet(history []store.Message) string {
	if len(history) > routerHistoryWindow {
		history = history[len(history)-routerHistoryWindow:]
	}

	type entry struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	entries := make([]entry, 0, len(history))
	for _, msg := range history {
		entries = append(entries, entry{Role: string(msg.Role), Content: msg.Content})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(data)
}
