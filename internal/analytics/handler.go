package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves the aggregated stats over HTTP.
type Handler struct {
	agg    *Aggregator
	logger *slog.Logger
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		agg:    agg,
		logger: slog.Default().With("component", "analytics-handler"),
	}
}

// Stats writes the current aggregated stats as JSON.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.agg.Stats()); err != nil {
		h.logger.Error("failed to encode stats", "error", err)
	}
}
