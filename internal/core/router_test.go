package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/store"
)

func TestRouter_SearchDecision(t *testing.T) {
	completer := &fakeCompleter{reply: "search"}
	router := NewRouter(completer, zap.NewNop())

	decision := router.Route(context.Background(), nil, "What does the document say about revenue?")
	assert.Equal(t, DecisionSearch, decision)
	assert.Equal(t, 1, completer.calls)
}

func TestRouter_ChatDecision(t *testing.T) {
	completer := &fakeCompleter{reply: "chat"}
	router := NewRouter(completer, zap.NewNop())

	// "What did I just say?" resembles a recall question, but a question
	// about the conversation itself is always chat; the prompt instructs
	// the classifier accordingly and its verdict is taken as-is.
	history := []store.Message{{Role: store.RoleUser, Content: "hi"}}
	decision := router.Route(context.Background(), history, "What did I just say?")
	assert.Equal(t, DecisionChat, decision)
}

func TestRouter_DecisionParsingIsLenient(t *testing.T) {
	completer := &fakeCompleter{reply: "  Search.\n"}
	router := NewRouter(completer, zap.NewNop())
	assert.Equal(t, DecisionSearch, router.Route(context.Background(), nil, "q"))

	completer.reply = "I would say 'chat' here."
	assert.Equal(t, DecisionChat, router.Route(context.Background(), nil, "q"))
}

func TestRouter_DefaultsToSearchOnFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model is down")}
	router := NewRouter(completer, zap.NewNop())
	assert.Equal(t, DecisionSearch, router.Route(context.Background(), nil, "anything"))
}

func TestRouter_DefaultsToSearchOnUnparseableReply(t *testing.T) {
	completer := &fakeCompleter{reply: "I am not sure what you mean."}
	router := NewRouter(completer, zap.NewNop())
	assert.Equal(t, DecisionSearch, router.Route(context.Background(), nil, "anything"))
}

func TestRouter_PromptCarriesOnlyTrailingHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "chat"}
	router := NewRouter(completer, zap.NewNop())

	history := []store.Message{
		{Role: store.RoleUser, Content: "oldest-question-marker"},
		{Role: store.RoleAssistant, Content: "second-marker"},
		{Role: store.RoleUser, Content: "third-marker"},
		{Role: store.RoleAssistant, Content: "fourth-marker"},
	}
	router.Route(context.Background(), history, "the question")

	require.Equal(t, 1, completer.calls)
	msgs := completer.lastMessages()
	require.Len(t, msgs, 1)
	prompt := msgs[0].Content

	assert.NotContains(t, prompt, "oldest-question-marker")
	assert.Contains(t, prompt, "second-marker")
	assert.Contains(t, prompt, "third-marker")
	assert.Contains(t, prompt, "fourth-marker")
	assert.Contains(t, prompt, "the question")
}
