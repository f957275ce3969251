package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
	"github.com/clientpro/clientpro-backend/internal/service"
)

// ClientHandler exposes client creation and removal, the two lifecycle
// events the message engine hangs off of, plus listing and referrals.
type ClientHandler struct {
	Clients   repository.ClientRepositoryInterface
	Service   *service.ClientService
	Referrals *service.ReferralService
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}

	var body struct {
		FirstName       string  `json:"first_name"`
		LastName        string  `json:"last_name"`
		PhoneNumber     string  `json:"phone_number"`
		Email           *string `json:"email"`
		PropertyAddress *string `json:"property_address"`
		City            *string `json:"city"`
		State           *string `json:"state"`
		Zip             *string `json:"zip"`
		PropertyType    string  `json:"property_type"`
		ClosingDate     string  `json:"closing_date"`
		Notes           *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.FirstName == "" || body.LastName == "" || body.PhoneNumber == "" {
		http.Error(w, "first_name, last_name and phone_number are required", http.StatusBadRequest)
		return
	}
	closingDate, err := time.Parse("2006-01-02", body.ClosingDate)
	if err != nil {
		http.Error(w, "closing_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	client, scheduled, err := h.Service.Create(agentID, service.NewClientInput{
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		PhoneNumber:     body.PhoneNumber,
		Email:           body.Email,
		PropertyAddress: body.PropertyAddress,
		City:            body.City,
		State:           body.State,
		Zip:             body.Zip,
		PropertyType:    model.PropertyType(body.PropertyType),
		ClosingDate:     closingDate,
		Notes:           body.Notes,
	})
	if err != nil {
		var limit *appErrors.ErrClientLimit
		if errors.As(err, &limit) {
			http.Error(w, limit.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"client":             client,
		"messages_scheduled": scheduled,
	})
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
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

	clients, total, err := h.Clients.ListByAgent(agentID, (page-1)*pageSize, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"data": clients,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
		},
	})
}

func (h *ClientHandler) Remove(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Remove(id, agentID); err != nil {
		var notFound *appErrors.ErrClientNotFound
		if errors.As(err, &notFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"removed": true})
}

func (h *ClientHandler) CreateReferral(w http.ResponseWriter, r *http.Request) {
	agentID, ok := agentFromRequest(r)
	if !ok {
		http.Error(w, "missing agent", http.StatusUnauthorized)
		return
	}

	var body struct {
		ReferredByClientID string  `json:"referred_by_client_id"`
		FirstName          string  `json:"referral_first_name"`
		LastName           string  `json:"referral_last_name"`
		Phone              *string `json:"referral_phone"`
		Email              *string `json:"referral_email"`
		Notes              *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	clientID, err := uuid.Parse(body.ReferredByClientID)
	if err != nil {
		http.Error(w, "invalid referred_by_client_id", http.StatusBadRequest)
		return
	}
	if body.FirstName == "" || body.LastName == "" {
		http.Error(w, "referral name is required", http.StatusBadRequest)
		return
	}

	referral, err := h.Referrals.Record(agentID, service.NewReferralInput{
		ReferredByClientID: clientID,
		FirstName:          body.FirstName,
		LastName:           body.LastName,
		Phone:              body.Phone,
		Email:              body.Email,
		Notes:              body.Notes,
	})
	if err != nil {
		var notFound *appErrors.ErrClientNotFound
		if errors.As(err, &notFound) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(referral)
}
