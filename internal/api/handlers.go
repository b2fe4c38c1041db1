package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/chunker"
	"github.com/intellidocs/intellidocs/internal/core"
	"github.com/intellidocs/intellidocs/internal/extract"
	"github.com/intellidocs/intellidocs/internal/store"
	"github.com/intellidocs/intellidocs/internal/vector"
)

// APIHandler exposes the retrieval core over HTTP. Authorization of the
// requesting user against the document is the upstream document manager's
// job; by the time a request lands here, ownership is settled.
type APIHandler struct {
	chatService   *core.ChatService
	ingestService *core.IngestService
	dbStore       *store.SQLiteStore
	index         vector.Index
	logger        *zap.Logger
}

func NewAPIHandler(cs *core.ChatService, is *core.IngestService, db *store.SQLiteStore, index vector.Index, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		chatService:   cs,
		ingestService: is,
		dbStore:       db,
		index:         index,
		logger:        logger,
	}
}

func documentIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	return id, err == nil
}

type IngestRequest struct {
	Text string `json:"text"`
}

type IngestResponse struct {
	DocumentID int64                `json:"document_id"`
	Status     store.DocumentStatus `json:"status"`
}

// IngestHandler accepts a document body (PDF bytes or JSON {"text": ...}),
// extracts its text and runs the ingestion pipeline synchronously.
func (h *APIHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	documentID, ok := documentIDParam(r)
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var rawText string
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req IngestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		rawText = req.Text
	} else {
		rawText, err = extract.Text(body, contentType)
		if err != nil {
			h.logger.Warn("text extraction failed",
				zap.Int64("document_id", documentID), zap.Error(err))
			http.Error(w, "Could not extract text from document", http.StatusUnprocessableEntity)
			return
		}
	}

	if err := h.dbStore.EnsureDocument(documentID); err != nil {
		h.logger.Error("failed to ensure document row",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to register document", http.StatusInternalServerError)
		return
	}

	if err := h.ingestService.Ingest(r.Context(), documentID, rawText); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyDocument):
			h.writeJSON(w, http.StatusUnprocessableEntity, IngestResponse{DocumentID: documentID, Status: store.StatusFailed})
		case errors.Is(err, core.ErrEmbeddingUnavailable):
			h.logger.Error("ingestion failed: embedding unavailable",
				zap.Int64("document_id", documentID), zap.Error(err))
			h.writeJSON(w, http.StatusServiceUnavailable, IngestResponse{DocumentID: documentID, Status: store.StatusFailed})
		case errors.Is(err, chunker.ErrInvalidConfig):
			h.logger.Error("ingestion misconfigured", zap.Error(err))
			http.Error(w, "Ingestion is misconfigured", http.StatusInternalServerError)
		default:
			h.logger.Error("ingestion failed",
				zap.Int64("document_id", documentID), zap.Error(err))
			h.writeJSON(w, http.StatusInternalServerError, IngestResponse{DocumentID: documentID, Status: store.StatusFailed})
		}
		return
	}

	h.writeJSON(w, http.StatusOK, IngestResponse{DocumentID: documentID, Status: store.StatusCompleted})
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler runs one chat turn against a document.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	documentID, ok := documentIDParam(r)
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}

	doc, err := h.dbStore.GetDocument(documentID)
	if err != nil {
		h.logger.Error("failed to look up document",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to look up document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	reply, err := h.chatService.PostMessage(r.Context(), documentID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

type HistoryResponse struct {
	DocumentID int64           `json:"document_id"`
	Messages   []store.Message `json:"messages"`
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	documentID, ok := documentIDParam(r)
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	messages, err := h.dbStore.History(documentID)
	if err != nil {
		h.logger.Error("failed to load history",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{DocumentID: documentID, Messages: messages})
}

// DeleteDocumentHandler removes a document's chunk set and conversation.
// The relational row owned by the upstream manager is cleaned up too.
func (h *APIHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentID, ok := documentIDParam(r)
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	if err := h.index.DeleteByDocument(r.Context(), documentID); err != nil {
		h.logger.Error("failed to delete document chunks",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if err := h.dbStore.DeleteConversation(documentID); err != nil {
		h.logger.Error("failed to delete conversation",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if err := h.dbStore.DeleteDocument(documentID); err != nil {
		h.logger.Error("failed to delete document row",
			zap.Int64("document_id", documentID), zap.Error(err))
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
