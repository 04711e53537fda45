package report

import (
	"encoding/json"
	"net/http"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

// Handler exposes the report endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("report: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type reportRequest struct {
	PatientDetails
	ConversationHistory ledger.Ledger `json:"conversation_history"`
}

// HandleGenerate renders a consultation report as a downloadable PDF.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pdf, err := h.service.Generate(r.Context(), req.PatientDetails, req.ConversationHistory)
	if err != nil {
		h.logger.Error("report generation failed", "error", err.Error())
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=medical_report.pdf")
	_, _ = w.Write(pdf)
}

// HandleGenerateOffline builds a JSON report from offline intake answers.
func (h *Handler) HandleGenerateOffline(w http.ResponseWriter, r *http.Request) {
	var req OfflineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.service.GenerateOffline(r.Context(), req)
	if err != nil {
		h.logger.Error("offline report generation failed", "error", err.Error())
		http.Error(w, "offline report generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=offline_report.json")
	_ = json.NewEncoder(w).Encode(rep)
}
