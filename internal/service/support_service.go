package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pin-support-be/internal/dto"
	"pin-support-be/internal/entity"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/pkg/events"
	"pin-support-be/pkg/flow"
	"pin-support-be/pkg/llm"
	"pin-support-be/pkg/locker"
	"pin-support-be/pkg/policy"
	"pin-support-be/pkg/rag/message"
	"pin-support-be/pkg/rag/prompt"
	"pin-support-be/pkg/rag/session"
	"pin-support-be/pkg/retrieval"
	"pin-support-be/pkg/ticket"
)

const logModule = "SUPPORT"

type ISupportService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	SubmitMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	GetHistory(ctx context.Context, sessionId string) ([]*dto.MessageResponse, error)
}

type SupportConfig struct {
	TopK              int
	CapabilityTimeout time.Duration
	// CreateUnknownSessions creates a session under an unrecognised id
	// instead of rejecting the message.
	CreateUnknownSessions bool
	// LockWait bounds how long a message waits for another turn on the same
	// session. Zero waits as long as the request context allows.
	LockWait time.Duration
}

type supportService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *flow.Registry
	engine     retrieval.Engine
	llm        llm.LLMProvider
	escalation policy.EscalationPolicy
	locker     locker.Locker
	publisher  events.Publisher
	logger     logger.ILogger

	sessionManager *session.Manager
	messageFactory *message.Factory

	topK              int
	capabilityTimeout time.Duration
	lockWait          time.Duration
	now               func() time.Time
}

func NewSupportService(
	uowFactory unitofwork.RepositoryFactory,
	registry *flow.Registry,
	engine retrieval.Engine,
	llmProvider llm.LLMProvider,
	escalation policy.EscalationPolicy,
	lock locker.Locker,
	publisher events.Publisher,
	log logger.ILogger,
	cfg SupportConfig,
) ISupportService {
	return &supportService{
		uowFactory:        uowFactory,
		registry:          registry,
		engine:            engine,
		llm:               llmProvider,
		escalation:        escalation,
		locker:            lock,
		publisher:         publisher,
		logger:            log,
		sessionManager:    session.NewManager(cfg.CreateUnknownSessions),
		messageFactory:    message.NewFactory(),
		topK:              cfg.TopK,
		capabilityTimeout: cfg.CapabilityTimeout,
		lockWait:          cfg.LockWait,
		now:               time.Now,
	}
}

func (s *supportService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sess, err := s.sessionManager.Create(ctx, uow, "", req.OrgId, req.UserId)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info(logModule, "Session created", map[string]interface{}{"session_id": sess.Id, "org_id": sess.OrgId})
	return &dto.CreateSessionResponse{SessionId: sess.Id}, nil
}

// SubmitMessage runs one turn. The outcome is exactly one of a question, an
// answer or a ticket. The session lock is held for the whole turn.
func (s *supportService) SubmitMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = session.NewID()
	}

	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}
	unlock, err := s.locker.Lock(lockCtx, sessionId)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			return nil, ErrSessionBusy
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	var sess *entity.SupportSession
	if req.SessionId == "" {
		sess, err = s.sessionManager.Create(ctx, uow, sessionId, req.OrgId, req.UserId)
	} else {
		sess, err = s.sessionManager.LoadOrCreate(ctx, uow, sessionId, req.OrgId, req.UserId)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.IsTerminal() {
		return nil, ErrSessionClosed
	}

	sess.Turns++
	sess.SetCategory(s.registry.Classify(req.Message))
	f := s.registry.Get(sess.CategoryOrEmpty())

	merged := flow.MergeCollected(sess.Collected, req.Context, req.Message)
	sess.AddSteps(merged.Steps)

	if err := s.sessionManager.Save(ctx, uow, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := s.messageFactory.Save(ctx, uow, s.messageFactory.UserMessage(sess.Id, req.Message, s.now())); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	if field, missing := flow.NextMissingField(f, sess.Collected); missing {
		return s.ask(ctx, uow, sess, flow.QuestionFor(f, field))
	}

	citations, bestScore, err := s.retrieve(ctx, prompt.RetrievalQuery(req.Message, sess.Collected))
	if err != nil {
		return nil, err
	}

	if decision := s.escalation.ShouldEscalate(sess.Turns, bestScore); decision.Escalate {
		return s.escalate(ctx, uow, sess, req, citations, decision.Reason)
	}

	answer, err := s.complete(ctx, prompt.NewGroundedBuilder(req.Message, sess.Collected, citations).Messages())
	if err != nil {
		return nil, err
	}

	if check := policy.CheckResponse(answer); !check.OK {
		s.logger.Warn(logModule, "Guardrail rejected answer", map[string]interface{}{
			"session_id": sess.Id,
			"reason":     check.Reason,
		})
		return s.escalate(ctx, uow, sess, req, citations, check.EscalationReason())
	}

	if err := s.messageFactory.Save(ctx, uow, s.messageFactory.AssistantMessage(sess.Id, answer, citations, s.now())); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}

	s.logger.Info(logModule, "Answered", map[string]interface{}{
		"session_id": sess.Id,
		"turn":       sess.Turns,
		"best_score": bestScore,
		"citations":  len(citations),
	})

	return &dto.ChatResponse{
		Type:      dto.ChatResponseAnswer,
		SessionId: sess.Id,
		Message:   answer,
		Citations: citations,
		Collected: sess.Collected,
	}, nil
}

func (s *supportService) ask(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.SupportSession, question string) (*dto.ChatResponse, error) {
	if err := s.messageFactory.Save(ctx, uow, s.messageFactory.AssistantMessage(sess.Id, question, nil, s.now())); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}
	return &dto.ChatResponse{
		Type:         dto.ChatResponseQuestion,
		SessionId:    sess.Id,
		Message:      question,
		NextQuestion: question,
		Citations:    []retrieval.Citation{},
		Collected:    sess.Collected,
	}, nil
}

func (s *supportService) retrieve(ctx context.Context, query string) ([]retrieval.Citation, float64, error) {
	capCtx, cancel := s.capabilityContext(ctx)
	defer cancel()

	citations, best, err := s.engine.Retrieve(capCtx, query, s.topK)
	if err != nil {
		s.logger.Error(logModule, "Retrieval failed", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("retrieve: %w", err)
	}
	return citations, best, nil
}

func (s *supportService) complete(ctx context.Context, messages []llm.Message) (string, error) {
	capCtx, cancel := s.capabilityContext(ctx)
	defer cancel()

	answer, err := s.llm.Chat(capCtx, messages)
	if err != nil {
		s.logger.Error(logModule, "Completion failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("complete: %w", err)
	}
	return answer, nil
}

func (s *supportService) capabilityContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.capabilityTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.capabilityTimeout)
}

// escalate builds and persists the ticket, records it in the transcript and
// closes the session to further turns.
func (s *supportService) escalate(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	sess *entity.SupportSession,
	req *dto.ChatRequest,
	citations []retrieval.Citation,
	reason string,
) (*dto.ChatResponse, error) {
	t := ticket.Build(ticket.Input{
		Message:   req.Message,
		Category:  sess.CategoryOrEmpty(),
		OrgID:     sess.OrgId,
		UserID:    sess.UserId,
		Context:   req.Context,
		Collected: sess.Collected,
		Steps:     sess.StepsAttempted,
		Citations: citations,
		Reason:    reason,
	})
	rendered := ticket.Render(t)

	record := &entity.Ticket{
		OrgId:            sess.OrgId,
		UserId:           sess.UserId,
		SessionId:        sess.Id,
		Summary:          t.Summary,
		Category:         t.Category,
		Impact:           string(t.Impact),
		Urgency:          string(t.Urgency),
		Status:           entity.TicketStatusCreated,
		EscalationReason: t.EscalationReason,
		RenderedText:     rendered,
		ErrorText:        t.ErrorText,
		User:             t.User,
		Device:           t.Device,
		Diagnostics:      t.Diagnostics,
		StepsAttempted:   t.StepsAttempted,
		Citations:        t.Citations,
		CreatedAt:        s.now(),
	}
	if err := uow.TicketRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}
	if err := s.messageFactory.Save(ctx, uow, s.messageFactory.AssistantMessage(sess.Id, rendered, nil, s.now())); err != nil {
		return nil, fmt.Errorf("save ticket message: %w", err)
	}

	sess.Status = entity.SessionStatusEscalated
	if err := s.sessionManager.Save(ctx, uow, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info(logModule, "Escalated", map[string]interface{}{
		"session_id": sess.Id,
		"ticket_id":  record.Id.String(),
		"reason":     reason,
	})
	s.publish(ctx, events.NewTicketEscalated(ticketPayload(record)))

	return &dto.ChatResponse{
		Type:      dto.ChatResponseTicket,
		SessionId: sess.Id,
		Citations: t.Citations,
		Collected: sess.Collected,
		TicketId:  record.Id.String(),
		Ticket:    &t,
		Rendered:  rendered,
	}, nil
}

// publish never fails the turn: the ticket is already persisted.
func (s *supportService) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error(logModule, "Failed to publish event", map[string]interface{}{
			"type":  ev.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *supportService) GetSession(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	sess, err := s.uowFactory.NewUnitOfWork(ctx).SessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return toSessionResponse(sess), nil
}

func (s *supportService) GetHistory(ctx context.Context, sessionId string) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sess, err := uow.SessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	messages, err := uow.MessageRepository().ListBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = &dto.MessageResponse{
			Id:        m.Id.String(),
			Role:      m.Role,
			Content:   m.Content,
			Citations: m.Citations,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}

func toSessionResponse(s *entity.SupportSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:             s.Id,
		OrgId:          s.OrgId,
		UserId:         s.UserId,
		Turns:          s.Turns,
		Category:       s.Category,
		Status:         string(s.Status),
		Collected:      s.Collected,
		StepsAttempted: s.StepsAttempted,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func ticketPayload(t *entity.Ticket) events.TicketPayload {
	return events.TicketPayload{
		TicketID:         t.Id.String(),
		SessionID:        t.SessionId,
		OrgID:            t.OrgId,
		Category:         t.Category,
		Summary:          t.Summary,
		EscalationReason: t.EscalationReason,
		RenderedText:     t.RenderedText,
	}
}
