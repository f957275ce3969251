package handler

import (
	"log"
	"net/http"

	"github.com/clientpro/clientpro-backend/internal/repository"
	"github.com/clientpro/clientpro-backend/internal/service"
)

const twimlEmpty = "<Response></Response>"

// WebhookHandler terminates the SMS provider's callbacks. The provider
// expects a quick 2xx TwiML acknowledgment whatever happens internally;
// there is no retry channel back to the person who texted.
type WebhookHandler struct {
	Correlator *service.Correlator
	Messages   repository.MessageRepositoryInterface
}

// Incoming handles an inbound SMS. Malformed events are rejected before the
// correlator sees them; everything else is acknowledged even when internal
// processing fails.
func (h *WebhookHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTwiML(w, http.StatusBadRequest)
		return
	}

	from := r.PostFormValue("From")
	to := r.PostFormValue("To")
	body := r.PostFormValue("Body")
	sid := r.PostFormValue("MessageSid")

	if from == "" || to == "" || body == "" {
		writeTwiML(w, http.StatusBadRequest)
		return
	}

	if err := h.Correlator.HandleInbound(r.Context(), from, to, body, sid); err != nil {
		log.Println("inbound webhook:", err)
	}
	writeTwiML(w, http.StatusOK)
}

// Status handles delivery receipts. Only the delivered status moves a row;
// intermediate provider states are ignored.
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTwiML(w, http.StatusBadRequest)
		return
	}

	sid := r.PostFormValue("MessageSid")
	status := r.PostFormValue("MessageStatus")
	if sid == "" {
		writeTwiML(w, http.StatusBadRequest)
		return
	}

	if status == "delivered" {
		matched, err := h.Messages.MarkDelivered(sid)
		if err != nil {
			log.Println("delivery receipt:", err)
		} else if !matched {
			log.Printf("delivery receipt for unknown provider id %s", sid)
		}
	}
	writeTwiML(w, http.StatusOK)
}

func writeTwiML(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(code)
	w.Write([]byte(twimlEmpty))
}
