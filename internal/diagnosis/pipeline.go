package diagnosis

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arogyamitra/health-chatbot/internal/flow"
	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/internal/llm"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

var pipelineTracer = otel.Tracer("healthchatbot.internal.diagnosis")

// Pipeline generates the next diagnosis question for a turn. Persistence is
// best effort: a storage failure never blocks the conversation.
type Pipeline struct {
	gen           *llm.Generator
	repo          Repository
	logger        *logging.Logger
	questionLimit int
}

// NewPipeline wires the diagnosis flow. A nil repo disables persistence.
func NewPipeline(gen *llm.Generator, repo Repository, logger *logging.Logger, questionLimit int) *Pipeline {
	if gen == nil {
		panic("diagnosis: generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if questionLimit <= 0 {
		questionLimit = flow.DefaultQuestionThreshold
	}
	return &Pipeline{gen: gen, repo: repo, logger: logger, questionLimit: questionLimit}
}

// HandleTurn records the user's answer to the previous question when it is a
// bare option choice, then generates the next question (or the booking
// recommendation once the limit is reached).
func (p *Pipeline) HandleTurn(ctx context.Context, l ledger.Ledger, userText, language, conversationID string) (flow.Result, error) {
	ctx, span := pipelineTracer.Start(ctx, "diagnosis.handle_turn")
	defer span.End()

	state := flow.ResolveDiagnosisState(l, p.questionLimit)
	span.SetAttributes(attribute.Int("diagnosis.questions_asked", state.QuestionsAsked))

	p.recordAnswer(ctx, userText, conversationID)

	reply, err := p.gen.Generate(ctx, llm.KindMedicalQuestion, map[string]string{
		"question_count":       strconv.Itoa(state.QuestionsAsked),
		"question_limit":       strconv.Itoa(p.questionLimit),
		"language":             language,
		"conversation_history": l.ModelVisible().Transcript(),
	})
	if err != nil {
		return flow.Result{}, err
	}

	p.recordQuestion(ctx, reply, state.QuestionsAsked+1, conversationID)
	return flow.Result{Reply: reply}, nil
}

func (p *Pipeline) recordAnswer(ctx context.Context, userText, conversationID string) {
	if p.repo == nil || conversationID == "" {
		return
	}
	selected, ok := ParseAnswer(userText)
	if !ok {
		return
	}
	questionID, err := p.repo.LatestQuestionID(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, ErrNoQuestions) {
			p.logger.Error("latest question lookup failed", "conversation_id", conversationID, "error", err.Error())
		}
		return
	}
	if err := p.repo.StoreAnswer(ctx, questionID, selected); err != nil {
		p.logger.Error("answer store failed", "question_id", questionID, "error", err.Error())
	}
}

func (p *Pipeline) recordQuestion(ctx context.Context, reply string, questionNo int, conversationID string) {
	if p.repo == nil || conversationID == "" {
		return
	}
	q, ok := ParseQuestion(reply)
	if !ok {
		// The raw reply still goes to the user; only structured storage is
		// skipped.
		p.logger.Warn("generated question did not parse", "conversation_id", conversationID)
		return
	}

	questionID, err := p.repo.StoreQuestion(ctx, conversationID, questionNo, q.Text)
	if err != nil {
		p.logger.Error("question store failed", "conversation_id", conversationID, "error", err.Error())
		return
	}
	for _, opt := range q.Options {
		if err := p.repo.StoreOption(ctx, questionID, opt.Label, opt.Text, opt.Terminology); err != nil {
			p.logger.Error("option store failed", "question_id", questionID, "error", err.Error())
		}
	}
}
