package unitofwork

import "context"

// RepositoryFactory hands each request its own UnitOfWork so write
// pipelines never share transaction state.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
