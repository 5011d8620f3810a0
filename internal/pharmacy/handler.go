package pharmacy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmacy-ai-agent/pkg/logging"
)

// RefillReporter forwards generated alerts to the pharmacist channel.
type RefillReporter interface {
	SendRefillReport(ctx context.Context, alerts []RefillAlert) error
}

// Handler exposes the admin-facing refill scan.
type Handler struct {
	scanner  *RefillScanner
	reporter RefillReporter
	logger   *logging.Logger
}

func NewHandler(scanner *RefillScanner, reporter RefillReporter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{scanner: scanner, reporter: reporter, logger: logger}
}

func (h *Handler) HandleRefillScan(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.scanner.Scan(r.Context())
	if err != nil {
		h.logger.Error("refill scan failed", "error", err)
		http.Error(w, "Refill scan failed", http.StatusInternalServerError)
		return
	}

	if h.reporter != nil {
		if err := h.reporter.SendRefillReport(r.Context(), alerts); err != nil {
			h.logger.Warn("refill report delivery failed", "error", err)
		}
	}

	if alerts == nil {
		alerts = []RefillAlert{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"generated": alerts,
	})
}

func RegisterAdminRoutes(r chi.Router, h *Handler) {
	r.Post("/refill-scan", h.HandleRefillScan)
}
