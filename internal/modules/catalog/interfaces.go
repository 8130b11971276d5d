package catalog

import (
	"context"

	"clickservice/internal/domain"
)

// ServiceRepository defines persistence of catalog entries
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
}

// RequestCounter reports how many service requests reference a service
type RequestCounter interface {
	CountByService(ctx context.Context, serviceID int64) (int64, error)
}
