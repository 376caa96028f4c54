package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/contact"
)

// ContactSubmitter is the slice of the contact service this handler needs.
type ContactSubmitter interface {
	Submit(ctx context.Context, form contact.Form) error
}

type ContactHandler struct {
	contacts ContactSubmitter
	timeout  time.Duration
}

func NewContactHandler(contacts ContactSubmitter, timeout time.Duration) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		timeout:  timeout,
	}
}

func (h *ContactHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form contact.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.contacts.Submit(ctx, form); err != nil {
		switch {
		case errors.Is(err, contact.ErrIncompleteForm):
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, contact.ErrCaptchaFailed):
			respondError(w, http.StatusBadRequest, "captcha_failed", "hCaptcha verification failed")
		case errors.Is(err, contact.ErrCaptchaNotConfigured):
			respondError(w, http.StatusInternalServerError, "internal_error", "Captcha configuration missing")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit contact form")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Thank you for contacting us. We'll get back to you soon!",
	})
}
