package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clickservice/internal/cache"
	"clickservice/internal/domain"
	"clickservice/internal/pkg/validator"
)

type Service struct {
	services ServiceRepository
	requests RequestCounter
	cache    cache.CatalogCache
	log      *slog.Logger
	now      func() time.Time
}

func NewService(services ServiceRepository, requests RequestCounter, c cache.CatalogCache, log *slog.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		services: services,
		requests: requests,
		cache:    c,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, actor domain.Identity, req CreateServiceRequest) (*domain.Service, error) {
	if !actor.IsOperator() {
		return nil, domain.Forbidden("only operators can edit the catalog")
	}

	now := s.now()
	svc := &domain.Service{
		Name:       strings.TrimSpace(req.Name),
		HourlyRate: req.HourlyRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := validator.Validate(svc); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, svc.Name, 0); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("service created", slog.Int64("service_id", svc.ID), slog.String("name", svc.Name))
	return svc, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Identity, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	if !actor.IsOperator() {
		return nil, domain.Forbidden("only operators can edit the catalog")
	}

	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.HourlyRate != nil {
		svc.HourlyRate = *req.HourlyRate
	}
	svc.UpdatedAt = s.now()

	if err := validator.Validate(svc); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.ensureUniqueName(ctx, svc.Name, id); err != nil {
			return nil, err
		}
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}

	s.cache.Invalidate(ctx, id)
	return svc, nil
}

// Delete refuses while any request references the service.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if !actor.IsOperator() {
		return domain.Forbidden("only operators can edit the catalog")
	}

	if _, err := s.services.GetByID(ctx, id); err != nil {
		return err
	}
	refs, err := s.requests.CountByService(ctx, id)
	if err != nil {
		return fmt.Errorf("count requests: %w", err)
	}
	if refs > 0 {
		return domain.Conflict("service %d is referenced by %d requests", id, refs)
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	s.cache.Invalidate(ctx, id)
	s.log.Info("service deleted", slog.Int64("service_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Service, error) {
	if svc, ok := s.cache.GetService(ctx, id); ok {
		return svc, nil
	}
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetService(ctx, svc)
	return svc, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Service, error) {
	if list, ok := s.cache.GetServices(ctx); ok {
		return list, nil
	}
	list, err := s.services.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetServices(ctx, list)
	return list, nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, excludeID int64) error {
	exists, err := s.services.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check service name: %w", err)
	}
	if exists {
		return domain.Conflict("service %q already exists", name)
	}
	return nil
}
