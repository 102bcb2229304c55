package unitofwork

import "context"

// RepositoryFactory opens units of work against the backing store.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
