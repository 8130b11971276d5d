package lifecycle

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"clickservice/internal/domain"
	"clickservice/internal/metrics"
	"clickservice/internal/modules/availability"
	"clickservice/internal/modules/reputation"
	"clickservice/internal/pkg/validator"
	"clickservice/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "clickservice/internal/modules/lifecycle"

// Service drives service requests through
// PENDING -> ASSIGNED -> COMPLETED -> REVIEWED, with CANCELLED reachable from
// PENDING and ASSIGNED. Every transition runs in one transaction and takes row
// locks in the order request, professional, slot.
type Service struct {
	store      *repository.Store
	ledger     *availability.Service
	reputation *reputation.Service
	metrics    *metrics.Metrics
	log        *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewService(
	store *repository.Store,
	ledger *availability.Service,
	rep *reputation.Service,
	m *metrics.Metrics,
	log *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		ledger:     ledger,
		reputation: rep,
		metrics:    m,
		log:        log,
		tracer:     otel.Tracer(tracerName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, actor domain.Identity, req CreateRequest) (*domain.ServiceRequest, error) {
	client := actor.UserID
	switch {
	case actor.IsOperator():
		client = req.ClientIdentity
	case actor.IsClient():
	default:
		return nil, domain.Forbidden("role %s cannot create service requests", actor.Role)
	}

	now := s.now()
	r := &domain.ServiceRequest{
		ServiceID:          req.ServiceID,
		ClientIdentity:     client,
		ProblemDescription: strings.TrimSpace(req.ProblemDescription),
		ServiceAddress:     strings.TrimSpace(req.ServiceAddress),
		TimeWindow:         strings.TrimSpace(req.TimeWindow),
		MaxBudget:          req.MaxBudget,
		AdditionalComments: strings.TrimSpace(req.AdditionalComments),
		State:              domain.StatePending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	verr := validator.Struct(r)
	if raw := strings.TrimSpace(req.RequestedDate); raw == "" {
		verr.Add("requested_date", "is required")
	} else if date, err := time.Parse(domain.DateLayout, raw); err != nil {
		verr.Add("requested_date", "must be a date in YYYY-MM-DD format")
	} else {
		r.RequestedDate = date
		var dateErr *domain.ValidationError
		if errors.As(domain.ValidateRequestedDate(date, now), &dateErr) {
			verr.Merge(dateErr)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.store.Services.GetByID(ctx, r.ServiceID); err != nil {
		return nil, err
	}
	if err := s.store.Requests.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.metrics.Transition(string(domain.StatePending))
	s.log.Info("service request created",
		slog.Int64("request_id", r.ID),
		slog.Int64("service_id", r.ServiceID),
		slog.Int64("client_identity", client),
	)
	return r, nil
}

// Assign binds a pending request to a capable, available professional and
// reserves the given slot of that professional.
func (s *Service) Assign(ctx context.Context, actor domain.Identity, requestID, professionalID, slotID int64) (_ *domain.ServiceRequest, err error) {
	if !actor.IsOperator() {
		return nil, domain.Forbidden("only operators can assign requests")
	}
	ctx, span := s.startSpan(ctx, "Assign", requestID,
		attribute.Int64("professional.id", professionalID),
		attribute.Int64("slot.id", slotID),
	)
	defer func() { endSpan(span, err) }()

	var assigned *domain.ServiceRequest
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !r.State.CanTransitionTo(domain.StateAssigned) {
			return domain.InvalidTransition("assign", r.State)
		}

		prof, err := tx.Professionals.GetByIDForUpdate(ctx, professionalID)
		if err != nil {
			return err
		}
		if !prof.HasCapability(r.ServiceID) {
			return fmt.Errorf("professional %d, service %d: %w", professionalID, r.ServiceID, ErrMissingCapability)
		}
		if !prof.Available {
			return fmt.Errorf("professional %d: %w", professionalID, ErrProfessionalUnavailable)
		}

		slot, err := tx.Slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.ProfessionalID != professionalID {
			return fmt.Errorf("slot %d, professional %d: %w", slotID, professionalID, ErrForeignSlot)
		}
		if _, err := s.ledger.WithTx(tx).ReserveSlot(ctx, slotID); err != nil {
			return err
		}

		now := s.now()
		r.State = domain.StateAssigned
		r.AssignedProfessionalID = &professionalID
		r.AssignedSlotID = &slotID
		r.AssignedAt = &now
		r.UpdatedAt = now
		if err := tx.Requests.Save(ctx, r); err != nil {
			return fmt.Errorf("save request: %w", err)
		}
		assigned = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(string(domain.StateAssigned))
	s.log.Info("service request assigned",
		slog.Int64("request_id", requestID),
		slog.Int64("professional_id", professionalID),
		slog.Int64("slot_id", slotID),
	)
	return assigned, nil
}

// Complete closes an assigned job, bumps the professional's job count and
// records the platform commission. Any failure rolls all of it back.
func (s *Service) Complete(ctx context.Context, actor domain.Identity, requestID int64, req CompleteRequest) (_ *Completion, err error) {
	ctx, span := s.startSpan(ctx, "Complete", requestID)
	defer func() { endSpan(span, err) }()

	var out Completion
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !r.State.CanTransitionTo(domain.StateCompleted) || r.AssignedProfessionalID == nil {
			return domain.InvalidTransition("complete", r.State)
		}

		prof, err := tx.Professionals.GetByIDForUpdate(ctx, *r.AssignedProfessionalID)
		if err != nil {
			return err
		}
		if !actor.IsOperator() && !actor.Is(prof.OwnerIdentity) {
			return domain.Forbidden("only the assigned professional or an operator can complete request %d", requestID)
		}

		now := s.now()
		r.State = domain.StateCompleted
		r.CompletedAt = &now
		r.UpdatedAt = now
		if err := tx.Requests.Save(ctx, r); err != nil {
			return fmt.Errorf("save request: %w", err)
		}
		if err := tx.Professionals.IncrementCompletedJobs(ctx, prof.ID); err != nil {
			return fmt.Errorf("increment completed jobs: %w", err)
		}

		paymentID := requestID
		if req.PaymentID != nil {
			paymentID = *req.PaymentID
		}
		commission, err := s.reputation.WithTx(tx).RecordCommission(ctx, reputation.RecordCommissionRequest{
			PaymentID: paymentID,
			RequestID: &requestID,
			Base:      req.PaymentAmount,
			Rate:      req.CommissionRate,
		})
		if err != nil {
			return err
		}

		out = Completion{Request: r, Commission: commission}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(string(domain.StateCompleted))
	s.log.Info("service request completed",
		slog.Int64("request_id", requestID),
		slog.Float64("commission", out.Commission.Amount),
	)
	return &out, nil
}

// Cancel stops a pending or assigned request and frees the held slot.
func (s *Service) Cancel(ctx context.Context, actor domain.Identity, requestID int64) (_ *domain.ServiceRequest, err error) {
	ctx, span := s.startSpan(ctx, "Cancel", requestID)
	defer func() { endSpan(span, err) }()

	var cancelled *domain.ServiceRequest
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.IsOperator() && !actor.Is(r.ClientIdentity) {
			return domain.Forbidden("only the client or an operator can cancel request %d", requestID)
		}
		if !r.State.CanTransitionTo(domain.StateCancelled) {
			return domain.InvalidTransition("cancel", r.State)
		}

		if r.State == domain.StateAssigned && r.AssignedSlotID != nil {
			if _, err := s.ledger.WithTx(tx).ReleaseHeld(ctx, *r.AssignedSlotID); err != nil {
				return fmt.Errorf("release slot: %w", err)
			}
		}

		now := s.now()
		r.State = domain.StateCancelled
		r.CancelledAt = &now
		r.UpdatedAt = now
		if err := tx.Requests.Save(ctx, r); err != nil {
			return fmt.Errorf("save request: %w", err)
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(string(domain.StateCancelled))
	s.log.Info("service request cancelled", slog.Int64("request_id", requestID))
	return cancelled, nil
}

// AttachReview records the client's review of a completed request. An order
// that already has a review always conflicts, whatever its state.
func (s *Service) AttachReview(ctx context.Context, actor domain.Identity, requestID int64, req ReviewRequest) (_ *domain.Review, err error) {
	ctx, span := s.startSpan(ctx, "AttachReview", requestID)
	defer func() { endSpan(span, err) }()

	var review *domain.Review
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.IsOperator() && !actor.Is(r.ClientIdentity) {
			return domain.Forbidden("only the client or an operator can review request %d", requestID)
		}

		exists, err := tx.Reviews.ExistsByOrderID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if exists {
			return fmt.Errorf("request %d: %w", requestID, ErrAlreadyReviewed)
		}
		if !r.State.CanTransitionTo(domain.StateReviewed) || r.AssignedProfessionalID == nil {
			return domain.InvalidTransition("review", r.State)
		}

		now := s.now()
		review = &domain.Review{
			OrderID:          requestID,
			Rating:           req.Rating,
			Comment:          req.Comment,
			Date:             domain.DateOf(now),
			ReviewerIdentity: actor.UserID,
			ProfessionalID:   *r.AssignedProfessionalID,
			CreatedAt:        now,
		}
		if err := s.reputation.WithTx(tx).AddReview(ctx, review); err != nil {
			return err
		}

		r.State = domain.StateReviewed
		r.UpdatedAt = now
		if err := tx.Requests.Save(ctx, r); err != nil {
			return fmt.Errorf("save request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(string(domain.StateReviewed))
	s.log.Info("review attached",
		slog.Int64("request_id", requestID),
		slog.Int64("professional_id", review.ProfessionalID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// Delete removes a request that has not been picked up yet.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, requestID int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.IsOperator() && !actor.Is(r.ClientIdentity) {
			return domain.Forbidden("only the client or an operator can delete request %d", requestID)
		}
		if r.State != domain.StatePending {
			return domain.InvalidTransition("delete", r.State)
		}
		return tx.Requests.Delete(ctx, requestID)
	})
}

func (s *Service) Get(ctx context.Context, requestID int64) (*domain.ServiceRequest, error) {
	return s.store.Requests.GetByID(ctx, requestID)
}

// Find lists requests matching every non-zero field of f, newest first.
func (s *Service) Find(ctx context.Context, f repository.RequestFilter) ([]domain.ServiceRequest, error) {
	if f.State != "" && !f.State.Valid() {
		return nil, domain.Invalid("state", "must be one of PENDING, ASSIGNED, COMPLETED, REVIEWED, CANCELLED")
	}
	return s.store.Requests.List(ctx, f)
}

func (s *Service) FindByClient(ctx context.Context, clientID int64) ([]domain.ServiceRequest, error) {
	return s.Find(ctx, repository.RequestFilter{ClientID: clientID})
}

func (s *Service) FindByState(ctx context.Context, state domain.RequestState) ([]domain.ServiceRequest, error) {
	return s.Find(ctx, repository.RequestFilter{State: state})
}

func (s *Service) FindByServiceAndState(ctx context.Context, serviceID int64, state domain.RequestState) ([]domain.ServiceRequest, error) {
	return s.Find(ctx, repository.RequestFilter{ServiceID: serviceID, State: state})
}

func (s *Service) FindByProfessional(ctx context.Context, professionalID int64) ([]domain.ServiceRequest, error) {
	return s.Find(ctx, repository.RequestFilter{ProfessionalID: professionalID})
}

// MatchCandidates lists available professionals offering the request's
// service that still have free slots, best rated first, then most
// experienced, then oldest profile.
func (s *Service) MatchCandidates(ctx context.Context, requestID int64) ([]Candidate, error) {
	r, err := s.store.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	profs, err := s.store.Professionals.ListByCapability(ctx, r.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}

	out := make([]Candidate, 0, len(profs))
	for _, p := range profs {
		slots, err := s.store.Slots.ListByProfessional(ctx, p.ID, true)
		if err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
		if len(slots) == 0 {
			continue
		}
		out = append(out, Candidate{Professional: p, FreeSlots: slots})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Professional.AverageRating, a.Professional.AverageRating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Professional.CompletedJobs, a.Professional.CompletedJobs); c != 0 {
			return c
		}
		return cmp.Compare(a.Professional.ID, b.Professional.ID)
	})
	return out, nil
}

// AutoAssign tries candidates and their free slots in match order until one
// assignment succeeds.
func (s *Service) AutoAssign(ctx context.Context, actor domain.Identity, requestID int64) (*domain.ServiceRequest, error) {
	if !actor.IsOperator() {
		return nil, domain.Forbidden("only operators can assign requests")
	}
	candidates, err := s.MatchCandidates(ctx, requestID)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		for _, slot := range c.FreeSlots {
			r, err := s.Assign(ctx, actor, requestID, c.Professional.ID, slot.ID)
			if err == nil {
				return r, nil
			}
			if !errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			s.log.Debug("auto-assign candidate rejected",
				slog.Int64("request_id", requestID),
				slog.Int64("professional_id", c.Professional.ID),
				slog.Int64("slot_id", slot.ID),
				slog.String("reason", err.Error()),
			)
		}
	}
	return nil, fmt.Errorf("request %d: %w", requestID, ErrNoCandidate)
}

func (s *Service) startSpan(ctx context.Context, op string, requestID int64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int64("request.id", requestID))
	return s.tracer.Start(ctx, "lifecycle."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
