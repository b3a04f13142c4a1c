package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rfenwick/relayd/internal/chat"
	"github.com/rfenwick/relayd/internal/llm"
	"github.com/rfenwick/relayd/internal/repo"
	"go.uber.org/zap"
)

type Handler struct {
	repo     *repo.Repository
	exchange *chat.Exchange
	logger   *zap.Logger
}

func NewHandler(repository *repo.Repository, exchange *chat.Exchange, logger *zap.Logger) *Handler {
	return &Handler{
		repo:     repository,
		exchange: exchange,
		logger:   logger,
	}
}

// Routes registers the conversation API on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /conversations", h.ListConversations)
	mux.HandleFunc("POST /conversations", h.CreateConversation)
	mux.HandleFunc("GET /conversations/{id}", h.GetConversation)
	mux.HandleFunc("PUT /conversations/{id}", h.RenameConversation)
	mux.HandleFunc("DELETE /conversations/{id}", h.DeleteConversation)
	mux.HandleFunc("POST /conversations/{id}/message", h.HandleMessage)
}

type RenameRequest struct {
	Title string `json:"title"`
}

type MessageRequest struct {
	Message string `json:"message"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.ListSummaries()
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, summaries)
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.repo.Create()
	if err != nil {
		h.logger.Error("failed to create conversation", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, conv)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.repo.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, conv)
}

func (h *Handler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.repo.Rename(r.PathValue("id"), req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, conv)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, DeleteResponse{Success: true})
}

func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.exchange.SubmitTurn(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "Conversation not found", http.StatusNotFound)
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "Message is required", http.StatusBadRequest)
	case errors.Is(err, llm.ErrNoCredential):
		h.logger.Error("completion credential missing", zap.String("path", r.URL.Path))
		http.Error(w, "Completion service not configured", http.StatusInternalServerError)
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
