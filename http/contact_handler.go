package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/listings-api/internal/contact"
	"github.com/yourorg/listings-api/internal/upstream"
)

const maxContactBody = 64 << 10

type EnquirySubmitter interface {
	Submit(ctx context.Context, req contact.Request, remoteAddr string) (*contact.Enquiry, error)
}

type ContactDeps struct {
	Enquiries EnquirySubmitter
}

func RegisterContact(r chi.Router, d ContactDeps) {
	r.Post("/contact", func(w http.ResponseWriter, req *http.Request) {
		body, err := upstream.ReadAllLimit(req.Body, maxContactBody)
		if err != nil {
			WriteError(w, req, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
			return
		}
		var in contact.Request
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&in); err != nil {
			WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}

		e, err := d.Enquiries.Submit(req.Context(), in, req.RemoteAddr)
		var verr *contact.ValidationError
		switch {
		case errors.As(err, &verr):
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_enquiry", "detail": verr.Error(), "fields": verr.Fields})
			return
		case errors.Is(err, contact.ErrNotDelivered):
			WriteError(w, req, http.StatusServiceUnavailable, "enquiry_not_delivered", "Something went wrong. Please try again later.")
			return
		case err != nil:
			WriteError(w, req, http.StatusInternalServerError, "enquiry_failed", err.Error())
			return
		}

		render.Status(req, http.StatusAccepted)
		render.JSON(w, req, map[string]any{
			"ok":      true,
			"id":      e.ID,
			"message": "Thank you for your message! We'll get back to you soon.",
		})
	})
}
