package domain

import "context"

// Store is the unit of work over the ledger. Repositories obtained from a
// Store passed to WithTransaction's callback share that transaction.
type Store interface {
	Account() AccountRepository
	User() UserRepository
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
