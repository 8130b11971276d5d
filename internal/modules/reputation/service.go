package reputation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clickservice/internal/domain"
	"clickservice/internal/metrics"
	"clickservice/internal/pkg/validator"
	"clickservice/internal/repository"
)

// Service owns derived professional reputation and the commission ledger.
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

// RecomputeAverageRating recalculates the mean from every review of the
// professional while holding the professional row.
func (s *Service) RecomputeAverageRating(ctx context.Context, professionalID int64) (float64, error) {
	var avg float64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Professionals.GetByIDForUpdate(ctx, professionalID); err != nil {
			return err
		}
		ratings, err := tx.Reviews.RatingsOf(ctx, professionalID)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		avg = domain.AverageRating(ratings)
		return tx.Professionals.UpdateRating(ctx, professionalID, avg)
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("average rating recomputed", slog.Int64("professional_id", professionalID), slog.Float64("average", avg))
	return avg, nil
}

// AddReview stores a review and refreshes the reviewed professional's average.
func (s *Service) AddReview(ctx context.Context, review *domain.Review) error {
	if review.Date.IsZero() {
		review.Date = domain.DateOf(s.now())
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	review.Comment = strings.TrimSpace(review.Comment)
	if err := validator.Validate(review); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return err
		}
		_, err := s.WithTx(tx).RecomputeAverageRating(ctx, review.ProfessionalID)
		return err
	})
}

// RecordCommission derives amount = round2(base*rate/100) and stores the record.
func (s *Service) RecordCommission(ctx context.Context, req RecordCommissionRequest) (*domain.Commission, error) {
	now := s.now()
	c := &domain.Commission{
		PaymentID: req.PaymentID,
		RequestID: req.RequestID,
		Rate:      req.Rate,
		Base:      req.Base,
		Amount:    domain.CommissionAmount(req.Base, req.Rate),
		CreatedAt: now,
	}

	verr := validator.Struct(c)
	date, ok := s.parseDate(req.Date, verr)
	if ok {
		c.Date = date
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.store.Commissions.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("record commission: %w", err)
	}

	s.metrics.Commission(c.Amount)
	s.log.Info("commission recorded",
		slog.Int64("commission_id", c.ID),
		slog.Int64("payment_id", c.PaymentID),
		slog.Float64("base", c.Base),
		slog.Float64("rate", c.Rate),
		slog.Float64("amount", c.Amount),
	)
	return c, nil
}

func (s *Service) GetCommission(ctx context.Context, id int64) (*domain.Commission, error) {
	return s.store.Commissions.GetByID(ctx, id)
}

func (s *Service) ListCommissions(ctx context.Context, from, to *time.Time) ([]domain.Commission, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.store.Commissions.List(ctx, repository.DateRange{From: from, To: to})
}

// UpdateCommission merges the given fields and recomputes the amount.
func (s *Service) UpdateCommission(ctx context.Context, actor domain.Identity, id int64, req UpdateCommissionRequest) (*domain.Commission, error) {
	if !actor.IsOperator() {
		return nil, domain.Forbidden("only operators can edit commissions")
	}

	c, err := s.store.Commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PaymentID != nil {
		c.PaymentID = *req.PaymentID
	}
	if req.Base != nil {
		c.Base = *req.Base
	}
	if req.Rate != nil {
		c.Rate = *req.Rate
	}
	c.Amount = domain.CommissionAmount(c.Base, c.Rate)

	verr := validator.Struct(c)
	if req.Date != nil {
		if date, ok := s.parseDate(*req.Date, verr); ok {
			c.Date = date
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.store.Commissions.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update commission: %w", err)
	}
	return c, nil
}

func (s *Service) DeleteCommission(ctx context.Context, actor domain.Identity, id int64) error {
	if !actor.IsOperator() {
		return domain.Forbidden("only operators can delete commissions")
	}
	return s.store.Commissions.Delete(ctx, id)
}

func (s *Service) CommissionSummary(ctx context.Context, from, to *time.Time) (*domain.CommissionSummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.store.Commissions.Summary(ctx, repository.DateRange{From: from, To: to})
}

func (s *Service) RatingSummary(ctx context.Context, professionalID int64) (*domain.RatingSummary, error) {
	if _, err := s.store.Professionals.GetByID(ctx, professionalID); err != nil {
		return nil, err
	}
	ratings, err := s.store.Reviews.RatingsOf(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	stars := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		stars[r]++
	}
	return &domain.RatingSummary{
		ProfessionalID: professionalID,
		TotalReviews:   int64(len(ratings)),
		AverageRating:  domain.Round2(domain.AverageRating(ratings)),
		Stars:          stars,
	}, nil
}

func (s *Service) ListReviewsForProfessional(ctx context.Context, professionalID int64) ([]domain.Review, error) {
	return s.store.Reviews.ListByProfessional(ctx, professionalID)
}

func (s *Service) ListReviewsByReviewer(ctx context.Context, reviewer int64) ([]domain.Review, error) {
	return s.store.Reviews.ListByReviewer(ctx, reviewer)
}

func (s *Service) GetReviewByOrder(ctx context.Context, orderID int64) (*domain.Review, error) {
	return s.store.Reviews.GetByOrderID(ctx, orderID)
}

func (s *Service) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	return s.store.Reviews.ExistsByOrderID(ctx, orderID)
}

// parseDate reads a YYYY-MM-DD value, empty meaning today. Problems are added to verr.
func (s *Service) parseDate(raw string, verr *domain.ValidationError) (time.Time, bool) {
	today := domain.DateOf(s.now())
	if strings.TrimSpace(raw) == "" {
		return today, true
	}
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		verr.Add("date", "must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	if d.After(today) {
		verr.Add("date", "must not be in the future")
		return time.Time{}, false
	}
	return d, true
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return domain.Invalid("from", "must not be after to")
	}
	return nil
}
