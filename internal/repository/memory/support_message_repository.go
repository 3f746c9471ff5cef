package memory

import (
	"context"
	"time"

	"pin-support-be/internal/entity"
	"pin-support-be/internal/repository/contract"

	"github.com/google/uuid"
)

type SupportMessageRepository struct {
	store *Store
}

func NewSupportMessageRepository(store *Store) contract.SupportMessageRepository {
	return &SupportMessageRepository{store: store}
}

func copyMessage(m *entity.SupportMessage) *entity.SupportMessage {
	c := *m
	c.Citations = cloneSlice(m.Citations)
	return &c
}

// Create appends under the store lock so concurrent writers keep insertion
// order.
func (r *SupportMessageRepository) Create(ctx context.Context, message *entity.SupportMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := messagesPrefix + message.SessionId
	var transcript []*entity.SupportMessage
	if v, ok := r.store.get(key); ok {
		transcript = v.([]*entity.SupportMessage)
	}
	transcript = append(cloneSlice(transcript), copyMessage(message))
	r.store.set(key, transcript)
	return nil
}

func (r *SupportMessageRepository) ListBySession(ctx context.Context, sessionId string) ([]*entity.SupportMessage, error) {
	v, ok := r.store.get(messagesPrefix + sessionId)
	if !ok {
		return []*entity.SupportMessage{}, nil
	}
	transcript := v.([]*entity.SupportMessage)
	out := make([]*entity.SupportMessage, len(transcript))
	for i, m := range transcript {
		out[i] = copyMessage(m)
	}
	return out, nil
}
