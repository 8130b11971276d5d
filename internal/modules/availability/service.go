package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clickservice/internal/domain"
	"clickservice/internal/metrics"
	"clickservice/internal/repository"
)

// Service is the availability ledger: published slots and their reservation state.
type Service struct {
	store   *repository.Store
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

func NewService(store *repository.Store, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a ledger bound to an enclosing transaction.
func (s *Service) WithTx(tx *repository.Store) *Service {
	cp := *s
	cp.store = tx
	return &cp
}

// PublishSlot creates a free slot. Overlap with existing slots is allowed here;
// only reserved slots may not overlap.
func (s *Service) PublishSlot(ctx context.Context, actor domain.Identity, professionalID int64, start, end time.Time) (*domain.AvailabilitySlot, error) {
	if err := domain.ValidateInterval(start, end); err != nil {
		return nil, err
	}

	prof, err := s.store.Professionals.GetByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if err := canManage(actor, prof); err != nil {
		return nil, err
	}

	now := s.now()
	slot := &domain.AvailabilitySlot{
		ProfessionalID: professionalID,
		StartTime:      start.UTC().Truncate(time.Second),
		EndTime:        end.UTC().Truncate(time.Second),
		IsFree:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !slot.EndTime.After(slot.StartTime) {
		return nil, domain.Invalid("end_time", "must be after start_time")
	}
	if err := s.store.Slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("publish slot: %w", err)
	}

	s.log.Info("slot published",
		slog.Int64("slot_id", slot.ID),
		slog.Int64("professional_id", professionalID),
		slog.Time("start", slot.StartTime),
		slog.Time("end", slot.EndTime),
	)
	return slot, nil
}

// HasOverlap reports whether any slot of the professional touches or
// intersects [start, end].
func (s *Service) HasOverlap(ctx context.Context, professionalID int64, start, end time.Time) (bool, error) {
	if err := domain.ValidateInterval(start, end); err != nil {
		return false, err
	}
	cnt, err := s.store.Slots.CountOverlapping(ctx, repository.OverlapQuery{
		ProfessionalID: professionalID,
		Start:          start,
		End:            end,
	})
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return cnt > 0, nil
}

// ReserveSlot marks a free slot as taken. It fails with a conflict when the
// slot is already taken or touches another reserved slot of the same
// professional. The professional row is locked so reservations for one
// professional are serialised.
func (s *Service) ReserveSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	var reserved *domain.AvailabilitySlot
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		slot, err := lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if !slot.IsFree {
			return fmt.Errorf("slot %d: %w", slotID, ErrSlotAlreadyReserved)
		}
		if err := ensureUnheld(ctx, tx, slotID); err != nil {
			return err
		}

		clashes, err := tx.Slots.CountOverlapping(ctx, repository.OverlapQuery{
			ProfessionalID: slot.ProfessionalID,
			Start:          slot.StartTime,
			End:            slot.EndTime,
			ExcludeID:      slot.ID,
			OnlyReserved:   true,
		})
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if clashes > 0 {
			return fmt.Errorf("slot %d of professional %d: %w", slotID, slot.ProfessionalID, ErrSlotOverlap)
		}

		if err := tx.Slots.SetFree(ctx, slot.ID, false); err != nil {
			return err
		}
		slot.IsFree = false
		reserved = slot
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.SlotConflict()
		}
		return nil, err
	}

	s.log.Info("slot reserved", slog.Int64("slot_id", slotID), slog.Int64("professional_id", reserved.ProfessionalID))
	return reserved, nil
}

// ReleaseSlot frees a reservation no assigned request holds; releasing a free
// slot is a no-op. Slots held by a request are freed through the request.
func (s *Service) ReleaseSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	return s.release(ctx, slotID, true)
}

// ReleaseHeld frees the slot of a request leaving ASSIGNED. It must run in the
// transaction that changes that request's state.
func (s *Service) ReleaseHeld(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	return s.release(ctx, slotID, false)
}

func (s *Service) release(ctx context.Context, slotID int64, guard bool) (*domain.AvailabilitySlot, error) {
	var (
		released *domain.AvailabilitySlot
		changed  bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		slot, err := lockSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		released = slot
		if slot.IsFree {
			return nil
		}
		if guard {
			if err := ensureUnheld(ctx, tx, slotID); err != nil {
				return err
			}
		}
		if err := tx.Slots.SetFree(ctx, slotID, true); err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
		slot.IsFree = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("slot released", slog.Int64("slot_id", slotID))
	}
	return released, nil
}

func (s *Service) GetSlot(ctx context.Context, slotID int64) (*domain.AvailabilitySlot, error) {
	return s.store.Slots.GetByID(ctx, slotID)
}

func (s *Service) ListFreeSlots(ctx context.Context, professionalID int64) ([]domain.AvailabilitySlot, error) {
	return s.list(ctx, professionalID, true)
}

func (s *Service) ListAllSlots(ctx context.Context, professionalID int64) ([]domain.AvailabilitySlot, error) {
	return s.list(ctx, professionalID, false)
}

func (s *Service) list(ctx context.Context, professionalID int64, onlyFree bool) ([]domain.AvailabilitySlot, error) {
	if _, err := s.store.Professionals.GetByID(ctx, professionalID); err != nil {
		return nil, err
	}
	return s.store.Slots.ListByProfessional(ctx, professionalID, onlyFree)
}

// DeleteSlot removes a free slot; reserved slots must be released first.
func (s *Service) DeleteSlot(ctx context.Context, actor domain.Identity, slotID int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		peek, err := tx.Slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		prof, err := tx.Professionals.GetByIDForUpdate(ctx, peek.ProfessionalID)
		if err != nil {
			return err
		}
		if err := canManage(actor, prof); err != nil {
			return err
		}
		slot, err := tx.Slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if !slot.IsFree {
			return fmt.Errorf("slot %d: %w", slotID, ErrSlotReserved)
		}
		if err := ensureUnheld(ctx, tx, slotID); err != nil {
			return err
		}
		if err := tx.Slots.Delete(ctx, slotID); err != nil {
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	})
}

// lockSlot takes the professional lock before the slot lock, the order every
// lifecycle transaction uses.
func lockSlot(ctx context.Context, tx *repository.Store, slotID int64) (*domain.AvailabilitySlot, error) {
	peek, err := tx.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Professionals.GetByIDForUpdate(ctx, peek.ProfessionalID); err != nil {
		return nil, err
	}
	return tx.Slots.GetByIDForUpdate(ctx, slotID)
}

func ensureUnheld(ctx context.Context, tx *repository.Store, slotID int64) error {
	held, err := tx.Requests.CountAssignedToSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("count slot holders: %w", err)
	}
	if held > 0 {
		return fmt.Errorf("slot %d: %w", slotID, ErrSlotHeld)
	}
	return nil
}

func canManage(actor domain.Identity, prof *domain.Professional) error {
	if actor.IsOperator() || actor.Is(prof.OwnerIdentity) {
		return nil
	}
	return domain.Forbidden("only the professional or an operator can manage slots of professional %d", prof.ID)
}
