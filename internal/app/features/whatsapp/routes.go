// internal/app/features/whatsapp/routes.go
package whatsapp

import "github.com/go-chi/chi/v5"

// Routes returns the webhook subrouter; mounted under /webhooks/whatsapp.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Webhook)
	return r
}
