package chat

import (
	"encoding/json"
	"net/http"

	"github.com/arogyamitra/health-chatbot/internal/flow"
	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

// Handler exposes the conversation endpoints over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("chat: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type chatRequest struct {
	ConversationID      string        `json:"conversation_id"`
	UserInput           string        `json:"user_input"`
	Language            string        `json:"language"`
	PatientName         string        `json:"patient_name"`
	PatientAge          string        `json:"patient_age"`
	PatientGender       string        `json:"patient_gender"`
	ReasonForVisit      string        `json:"reason_for_visit"`
	ConversationHistory ledger.Ledger `json:"conversation_history"`
}

type chatResponse struct {
	ConversationID      string        `json:"conversation_id"`
	Response            string        `json:"response"`
	ConversationHistory ledger.Ledger `json:"conversation_history"`
}

// HandleChat processes one turn and echoes the updated ledger.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserInput == "" && len(req.ConversationHistory) > 0 {
		http.Error(w, "user_input is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.HandleTurn(r.Context(), TurnRequest{
		ConversationID: req.ConversationID,
		UserText:       req.UserInput,
		Language:       req.Language,
		Patient: flow.PatientContext{
			Name:   req.PatientName,
			Age:    req.PatientAge,
			Gender: req.PatientGender,
			Reason: req.ReasonForVisit,
		},
		Ledger: req.ConversationHistory,
	})
	if err != nil {
		h.logger.Error("chat turn failed", "conversation_id", req.ConversationID, "error", err.Error())
		http.Error(w, "chat processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{
		ConversationID:      resp.ConversationID,
		Response:            resp.Reply,
		ConversationHistory: resp.Ledger,
	})
}

type historyRequest struct {
	ConversationHistory ledger.Ledger `json:"conversation_history"`
}

// HandleSuggestDepartment maps a conversation to a department name.
func (h *Handler) HandleSuggestDepartment(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	dept := h.service.SuggestDepartment(r.Context(), req.ConversationHistory)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"suggested_department": dept})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
