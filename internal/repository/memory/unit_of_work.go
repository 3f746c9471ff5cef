package memory

import (
	"context"
	"fmt"

	"pin-support-be/internal/repository/contract"
	"pin-support-be/internal/repository/unitofwork"
)

// UnitOfWork mirrors the gorm unit of work over a Store. Writes apply
// immediately; Rollback does not undo them.
type UnitOfWork struct {
	store  *Store
	active bool
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.active = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *UnitOfWork) SessionRepository() contract.SupportSessionRepository {
	return NewSupportSessionRepository(u.store)
}

func (u *UnitOfWork) MessageRepository() contract.SupportMessageRepository {
	return NewSupportMessageRepository(u.store)
}

func (u *UnitOfWork) TicketRepository() contract.TicketRepository {
	return NewTicketRepository(u.store)
}

func (u *UnitOfWork) KnowledgeRepository() contract.KnowledgeRepository {
	return NewKnowledgeRepository(u.store)
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}
