package repository

import (
	"context"
	"errors"
	"strings"

	"clickservice/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories over one gorm handle, which is either the
// pool or an open transaction.
type Store struct {
	db *gorm.DB

	Services      *ServiceRepository
	Professionals *ProfessionalRepository
	Slots         *SlotRepository
	Requests      *RequestRepository
	Reviews       *ReviewRepository
	Commissions   *CommissionRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Services:      NewServiceRepository(db),
		Professionals: NewProfessionalRepository(db),
		Slots:         NewSlotRepository(db),
		Requests:      NewRequestRepository(db),
		Reviews:       NewReviewRepository(db),
		Commissions:   NewCommissionRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn with a Store bound to one transaction. Nested calls
// become savepoints. Inside fn only the given store may be used.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// AutoMigrate creates or updates every table the engine owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&serviceModel{},
		&professionalModel{},
		&professionalServiceModel{},
		&slotModel{},
		&serviceRequestModel{},
		&reviewModel{},
		&commissionModel{},
	)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	// Ignored by the SQLite dialect, where the transaction already serialises writers.
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(entity, id)
	}
	return err
}
