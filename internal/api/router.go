package api

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/middleware"
)

// NewRouter builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /api/v1/items                   → post item
//	GET    /api/v1/items/top               → top items by score
//	GET    /api/v1/items/{id}              → get item
//	POST   /api/v1/items/{id}/votes        → vote
//	POST   /api/v1/items/{id}/groups       → change group membership
//	GET    /api/v1/groups/{group}/items    → top items in group
//	GET    /api/v1/suggest                 → prefix autocomplete
//	PUT    /api/v1/dictionary              → bulk load words
//	DELETE /api/v1/dictionary              → flush dictionary
//	GET    /api/v1/cache/stats             → suggest cache stats
//	POST   /api/v1/cache/invalidate        → empty suggest cache
//	GET    /health/live, /health/ready     → probes
//
// Middleware chain (outermost first): RequestID → Metrics → Timeout.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/items", h.PostItem)
	mux.HandleFunc("GET /api/v1/items/top", h.TopItems)
	mux.HandleFunc("GET /api/v1/items/{id}", h.GetItem)
	mux.HandleFunc("POST /api/v1/items/{id}/votes", h.Vote)
	mux.HandleFunc("POST /api/v1/items/{id}/groups", h.ChangeGroups)
	mux.HandleFunc("GET /api/v1/groups/{group}/items", h.GroupItems)

	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("PUT /api/v1/dictionary", h.LoadDictionary)
	mux.HandleFunc("DELETE /api/v1/dictionary", h.FlushDictionary)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)

	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if timeout > 0 {
		chain = middleware.Timeout(timeout)(chain)
	}
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
