package message

import (
	"context"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/unitofwork"
	"pin-support-be/pkg/retrieval"

	"github.com/google/uuid"
)

// Factory handles transcript message creation and persistence
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) UserMessage(sessionId, content string, now time.Time) entity.SupportMessage {
	return entity.SupportMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      entity.MessageRoleUser,
		Content:   content,
		Citations: []retrieval.Citation{},
		CreatedAt: now,
	}
}

// AssistantMessage records a question, an answer (with its citations) or a
// rendered ticket.
func (f *Factory) AssistantMessage(sessionId, content string, citations []retrieval.Citation, now time.Time) entity.SupportMessage {
	if citations == nil {
		citations = []retrieval.Citation{}
	}
	return entity.SupportMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      entity.MessageRoleAssistant,
		Content:   content,
		Citations: citations,
		CreatedAt: now,
	}
}

func (f *Factory) Save(ctx context.Context, uow unitofwork.UnitOfWork, message entity.SupportMessage) error {
	return uow.MessageRepository().Create(ctx, &message)
}
