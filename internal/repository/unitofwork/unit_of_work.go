package unitofwork

import (
	"context"

	"pin-support-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SupportSessionRepository
	MessageRepository() contract.SupportMessageRepository
	TicketRepository() contract.TicketRepository
	KnowledgeRepository() contract.KnowledgeRepository
}
