package professional

import (
	"context"

	"clickservice/internal/domain"
)

// ProfessionalRepository defines persistence of professional profiles
type ProfessionalRepository interface {
	Create(ctx context.Context, p *domain.Professional) error
	GetByID(ctx context.Context, id int64) (*domain.Professional, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Professional, error)
	GetByOwner(ctx context.Context, owner int64) (*domain.Professional, error)
	ExistsByOwner(ctx context.Context, owner int64) (bool, error)
	List(ctx context.Context) ([]domain.Professional, error)
	ListAvailable(ctx context.Context) ([]domain.Professional, error)
	ListByCapability(ctx context.Context, serviceID int64) ([]domain.Professional, error)
	UpdateProfile(ctx context.Context, p *domain.Professional) error
	ReplaceCapabilities(ctx context.Context, id int64, serviceIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

// ServiceLookup resolves catalog ids
type ServiceLookup interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Service, error)
}

// AssignmentCounter reports open work of a professional
type AssignmentCounter interface {
	CountByProfessionalAndState(ctx context.Context, professionalID int64, state domain.RequestState) (int64, error)
}

// Transactor runs fn with repositories bound to one transaction
type Transactor interface {
	InTx(ctx context.Context, fn func(professionals ProfessionalRepository, requests AssignmentCounter) error) error
}
