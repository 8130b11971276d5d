package professional

import (
	"context"

	"clickservice/internal/repository"
)

type storeTransactor struct {
	store *repository.Store
}

// StoreTransactor adapts the gorm store to Transactor.
func StoreTransactor(store *repository.Store) Transactor {
	return storeTransactor{store: store}
}

func (t storeTransactor) InTx(ctx context.Context, fn func(ProfessionalRepository, AssignmentCounter) error) error {
	return t.store.Transaction(ctx, func(tx *repository.Store) error {
		return fn(tx.Professionals, tx.Requests)
	})
}
