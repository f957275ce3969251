package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// agentFromRequest reads the tenant id the auth layer put on the request.
// Every message and client read below is scoped to it.
func agentFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-Agent-ID"))
	return id, err == nil
}

// MessageHandler exposes the agent-facing message routes: listing, replies,
// editing and cancelling still-scheduled rows.
type MessageHandler struct {
	Messages repository.MessageRepositoryInterface
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 100 {
		pageSize = 100
	}
	status := model.Status(r.URL.Query().Get("status"))

	messages, total, err := h.Messages.ListByAgent(agentID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"data": messages,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": (total + pageSize - 1) / pageSize,
		},
	})
}

func (h *MessageHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 {
		days = 30
	}

	messages, err := h.Messages.ListUpcoming(agentID, days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"data": messages})
}

func (h *MessageHandler) UnreadReplies(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}

	messages, err := h.Messages.ListUnreadReplies(agentID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"data": messages})
}

func (h *MessageHandler) UpdateText(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}

	var body struct {
		MessageText string `json:"message_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MessageText == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	msg, err := h.Messages.UpdateText(id, agentID, body.MessageText)
	if err != nil {
		var notFound *appErrors.ErrMessageNotFound
		if errors.As(err, &notFound) {
			http.Error(w, "message not found or not editable", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, msg)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}

	if err := h.Messages.MarkRead(id, agentID); err != nil {
		var notFound *appErrors.ErrMessageNotFound
		if errors.As(err, &notFound) {
			http.Error(w, "message not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"read": true})
}

// Cancel transitions a scheduled message to cancelled. Rows already in
// flight or terminal are reported as not cancellable.
func (h *MessageHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}

	cancelled, err := h.Messages.Cancel(id, agentID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !cancelled {
		http.Error(w, "message not found or not cancellable", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"cancelled": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
