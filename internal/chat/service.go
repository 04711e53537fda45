package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arogyamitra/health-chatbot/internal/flow"
	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/internal/llm"
	"github.com/arogyamitra/health-chatbot/internal/observability/metrics"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

var serviceTracer = otel.Tracer("healthchatbot.internal.chat")

const (
	defaultLanguage = "English"

	greetingFallback      = "Hello! I can help you with medical diagnosis questions or with booking a doctor appointment. Which would you like today?"
	clarificationFallback = "I can help with a medical diagnosis or with booking a doctor appointment. Which one would you like?"
)

type diagnosisPipeline interface {
	HandleTurn(ctx context.Context, l ledger.Ledger, userText, language, conversationID string) (flow.Result, error)
}

type appointmentPipeline interface {
	HandleTurn(ctx context.Context, l ledger.Ledger, userText, language string, patient flow.PatientContext) (flow.Result, error)
}

// Service routes one conversation turn to the right flow. All conversation
// state lives in the submitted ledger; the service itself is stateless.
type Service struct {
	gen           *llm.Generator
	diagnosis     diagnosisPipeline
	appointment   appointmentPipeline
	cache         *LedgerCache
	logger        *logging.Logger
	metrics       *metrics.ChatMetrics
	questionLimit int
}

// NewService wires the turn orchestrator. cache may be nil; caching is then
// skipped.
func NewService(gen *llm.Generator, diagnosis diagnosisPipeline, appointment appointmentPipeline, cache *LedgerCache, logger *logging.Logger, m *metrics.ChatMetrics, questionLimit int) *Service {
	if gen == nil || diagnosis == nil || appointment == nil {
		panic("chat: service dependencies cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if questionLimit <= 0 {
		questionLimit = flow.DefaultQuestionThreshold
	}
	return &Service{
		gen:           gen,
		diagnosis:     diagnosis,
		appointment:   appointment,
		cache:         cache,
		logger:        logger,
		metrics:       m,
		questionLimit: questionLimit,
	}
}

// TurnRequest is one user turn plus the full replayed conversation.
type TurnRequest struct {
	ConversationID string
	UserText       string
	Language       string
	Patient        flow.PatientContext
	Ledger         ledger.Ledger
}

// TurnResponse echoes the updated ledger so the client can replay it on the
// next turn.
type TurnResponse struct {
	ConversationID string
	Reply          string
	Ledger         ledger.Ledger
}

// HandleTurn processes a turn end to end. On failure nothing is appended, so
// the client can resubmit the same ledger.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "chat.handle_turn")
	defer span.End()

	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("chat.conversation_id", conversationID))

	history := req.Ledger
	// A client that sends only its conversation id resumes from the cached
	// ledger instead of starting over.
	if len(history) == 0 && req.ConversationID != "" && s.cache != nil {
		cached, err := s.cache.Load(ctx, req.ConversationID)
		switch {
		case err == nil:
			history = cached
		case !errors.Is(err, ErrLedgerNotFound):
			s.logger.Warn("ledger cache load failed", "conversation_id", req.ConversationID, "error", err.Error())
		}
	}

	// A brand-new conversation gets a greeting and the ledger stays as
	// submitted; the client records the exchange.
	if len(history) == 0 {
		reply, err := s.gen.Generate(ctx, llm.KindGreeting, map[string]string{"language": language})
		if err != nil {
			reply = greetingFallback
		}
		s.metrics.ObserveTurn("greeting", "ok")
		return TurnResponse{ConversationID: conversationID, Reply: reply, Ledger: history}, nil
	}

	l := history.WithTurn(ledger.RoleUser, req.UserText)

	intent := s.classifyIntent(ctx, l, req.UserText)
	diag := flow.ResolveDiagnosisState(l, s.questionLimit)
	decision := flow.Route(l, intent, diag)
	span.SetAttributes(attribute.String("chat.intent", string(intent)))

	if decision.Clarify {
		reply, err := s.gen.Generate(ctx, llm.KindClarification, map[string]string{
			"user_input": req.UserText,
			"language":   language,
		})
		if err != nil {
			reply = clarificationFallback
		}
		l = l.WithTurn(ledger.RoleAssistant, reply)
		s.metrics.ObserveTurn("clarification", "ok")
		s.saveLedger(ctx, conversationID, l)
		return TurnResponse{ConversationID: conversationID, Reply: reply, Ledger: l}, nil
	}

	if decision.RecordFlow {
		l = l.WithMarker(ledger.MarkerFlow, string(decision.Target))
	}

	var (
		result flow.Result
		err    error
	)
	switch decision.Target {
	case ledger.FlowDiagnosis:
		result, err = s.diagnosis.HandleTurn(ctx, l, req.UserText, language, conversationID)
	default:
		result, err = s.appointment.HandleTurn(ctx, l, req.UserText, language, req.Patient)
	}
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(string(decision.Target), "error")
		return TurnResponse{}, err
	}

	l = append(l, result.Markers...)
	l = l.WithTurn(ledger.RoleAssistant, result.Reply)

	s.metrics.ObserveTurn(string(decision.Target), "ok")
	s.saveLedger(ctx, conversationID, l)
	return TurnResponse{ConversationID: conversationID, Reply: result.Reply, Ledger: l}, nil
}

// SuggestDepartment maps the conversation so far to a single department
// name. Failures fall back to General Medicine rather than erroring the
// endpoint.
func (s *Service) SuggestDepartment(ctx context.Context, l ledger.Ledger) string {
	ctx, span := serviceTracer.Start(ctx, "chat.suggest_department")
	defer span.End()

	dept, err := s.gen.Generate(ctx, llm.KindDepartmentSuggestion, map[string]string{
		"conversation_history": l.ModelVisible().Transcript(),
	})
	if err != nil {
		s.logger.Error("department suggestion failed", "error", err.Error())
		return "General Medicine"
	}
	return strings.TrimSpace(dept)
}

func (s *Service) classifyIntent(ctx context.Context, l ledger.Ledger, userText string) flow.Intent {
	raw, err := s.gen.Generate(ctx, llm.KindIntent, map[string]string{
		"user_input": userText,
		"context":    l.ModelVisible().Transcript(),
	})
	if err != nil {
		// An unreadable intent downgrades to a clarification turn instead of
		// failing the request.
		s.logger.Warn("intent classification failed", "error", err.Error())
		return flow.IntentUnclear
	}
	return flow.ParseIntent(raw)
}

func (s *Service) saveLedger(ctx context.Context, conversationID string, l ledger.Ledger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, conversationID, l); err != nil {
		s.logger.Warn("ledger cache save failed", "conversation_id", conversationID, "error", err.Error())
	}
}
