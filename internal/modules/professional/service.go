package professional

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"clickservice/internal/domain"
	"clickservice/internal/pkg/phone"
	"clickservice/internal/pkg/validator"
)

// Service is the professional directory.
type Service struct {
	professionals ProfessionalRepository
	services      ServiceLookup
	tx            Transactor
	phoneRegion   string
	log           *slog.Logger
	now           func() time.Time
}

func NewService(professionals ProfessionalRepository, services ServiceLookup, tx Transactor, phoneRegion string, log *slog.Logger) *Service {
	return &Service{
		professionals: professionals,
		services:      services,
		tx:            tx,
		phoneRegion:   phoneRegion,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the caller's profile. Operators may register for another
// identity through req.OwnerIdentity.
func (s *Service) Register(ctx context.Context, actor domain.Identity, req RegisterRequest) (*domain.Professional, error) {
	owner := actor.UserID
	switch {
	case actor.IsOperator():
		owner = req.OwnerIdentity
	case actor.IsProfessional():
	default:
		return nil, domain.Forbidden("role %s cannot register a professional profile", actor.Role)
	}

	now := s.now()
	p := &domain.Professional{
		OwnerIdentity: owner,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         phone.Normalize(req.Phone, s.phoneRegion),
		Bio:           strings.TrimSpace(req.Bio),
		WorkZone:      strings.TrimSpace(req.WorkZone),
		Available:     req.Available == nil || *req.Available,
		RegisteredAt:  now,
		UpdatedAt:     now,
	}
	if err := validator.Validate(p); err != nil {
		return nil, err
	}

	exists, err := s.professionals.ExistsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("check owner: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("identity %d: %w", owner, ErrProfileExists)
	}

	caps, err := s.resolveServices(ctx, req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	p.Capabilities = caps

	if err := s.professionals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create professional: %w", err)
	}

	s.log.Info("professional registered",
		slog.Int64("professional_id", p.ID),
		slog.Int64("owner_identity", owner),
		slog.Int("capabilities", len(caps)),
	)
	return p, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*domain.Professional, error) {
	return s.professionals.GetByID(ctx, id)
}

func (s *Service) FindByOwnerIdentity(ctx context.Context, owner int64) (*domain.Professional, error) {
	return s.professionals.GetByOwner(ctx, owner)
}

func (s *Service) List(ctx context.Context) ([]domain.Professional, error) {
	return s.professionals.List(ctx)
}

// ListAvailable ignores slots; it reflects the profile flag only.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.Professional, error) {
	return s.professionals.ListAvailable(ctx)
}

func (s *Service) FindByCapability(ctx context.Context, serviceID int64) ([]domain.Professional, error) {
	return s.professionals.ListByCapability(ctx, serviceID)
}

// Update merges the profile fields present in req. Rating, job count and
// capabilities are not editable here.
func (s *Service) Update(ctx context.Context, actor domain.Identity, id int64, req UpdateRequest) (*domain.Professional, error) {
	p, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canEdit(actor, p); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		p.Phone = phone.Normalize(*req.Phone, s.phoneRegion)
	}
	if req.Bio != nil {
		p.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.WorkZone != nil {
		p.WorkZone = strings.TrimSpace(*req.WorkZone)
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
	p.UpdatedAt = s.now()

	if err := validator.Validate(p); err != nil {
		return nil, err
	}
	if err := s.professionals.UpdateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("update professional: %w", err)
	}
	return p, nil
}

// AssignCapabilities replaces the capability set wholesale.
func (s *Service) AssignCapabilities(ctx context.Context, actor domain.Identity, id int64, serviceIDs []int64) (*domain.Professional, error) {
	p, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canEdit(actor, p); err != nil {
		return nil, err
	}

	caps, err := s.resolveServices(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	if err := s.professionals.ReplaceCapabilities(ctx, id, caps); err != nil {
		return nil, fmt.Errorf("replace capabilities: %w", err)
	}
	p.Capabilities = caps
	p.UpdatedAt = s.now()

	s.log.Info("capabilities assigned", slog.Int64("professional_id", id), slog.Any("service_ids", caps))
	return p, nil
}

// Delete refuses while the professional holds assigned work. The professional
// row stays locked from the check to the delete so no assignment slips in.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if !actor.IsOperator() {
		return domain.Forbidden("only operators can delete professionals")
	}
	err := s.tx.InTx(ctx, func(professionals ProfessionalRepository, requests AssignmentCounter) error {
		if _, err := professionals.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		open, err := requests.CountByProfessionalAndState(ctx, id, domain.StateAssigned)
		if err != nil {
			return fmt.Errorf("count assignments: %w", err)
		}
		if open > 0 {
			return fmt.Errorf("professional %d holds %d %w", id, open, ErrHasAssignedWork)
		}
		if err := professionals.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete professional: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("professional deleted", slog.Int64("professional_id", id))
	return nil
}

// resolveServices collapses duplicates and fails on the first id that does not exist.
func (s *Service) resolveServices(ctx context.Context, ids []int64) ([]int64, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	if len(unique) == 0 {
		return []int64{}, nil
	}

	found, err := s.services.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	known := make(map[int64]struct{}, len(found))
	for _, svc := range found {
		known[svc.ID] = struct{}{}
	}
	for _, id := range unique {
		if _, ok := known[id]; !ok {
			return nil, domain.NotFound("service", id)
		}
	}
	return unique, nil
}

func canEdit(actor domain.Identity, p *domain.Professional) error {
	if actor.IsOperator() || actor.Is(p.OwnerIdentity) {
		return nil
	}
	return domain.Forbidden("cannot modify professional %d", p.ID)
}
