// internal/app/features/signing/routes.go
package signing

import (
	"github.com/caseflowhq/caseflow/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// InternalRoutes returns the authenticated office surface; mounted under
// /internal/signing-requests behind the bearer-token middleware.
func InternalRoutes(h *Handler, verifier *auth.Verifier) chi.Router {
	r := chi.NewRouter()
	r.Use(verifier.Middleware)
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/send", h.Send)
	r.Post("/{id}/cancel", h.Cancel)
	r.Get("/{id}/audit", h.AuditTrail)
	return r
}

// PublicRoutes returns the unauthenticated token-addressed surface; mounted
// under /public/signing with a permissive CORS policy (recipients open the
// link from anywhere).
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/resolve", h.Resolve)
	r.Post("/complete", h.Complete)
	return r
}
