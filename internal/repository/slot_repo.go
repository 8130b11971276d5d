package repository

import (
	"context"
	"time"

	"clickservice/internal/domain"

	"gorm.io/gorm"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

type slotModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	ProfessionalID int64     `gorm:"column:professional_id;not null;index:idx_slots_professional_start"`
	StartTime      time.Time `gorm:"column:start_time;not null;index:idx_slots_professional_start"`
	EndTime        time.Time `gorm:"column:end_time;not null"`
	IsFree         bool      `gorm:"column:is_free;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (slotModel) TableName() string { return "availability_slots" }

func toDomainSlot(m slotModel) *domain.AvailabilitySlot {
	return &domain.AvailabilitySlot{
		ID:             m.ID,
		ProfessionalID: m.ProfessionalID,
		StartTime:      m.StartTime.UTC(),
		EndTime:        m.EndTime.UTC(),
		IsFree:         m.IsFree,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toSlotModel(s *domain.AvailabilitySlot) slotModel {
	return slotModel{
		ID:             s.ID,
		ProfessionalID: s.ProfessionalID,
		StartTime:      s.StartTime.UTC(),
		EndTime:        s.EndTime.UTC(),
		IsFree:         s.IsFree,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (r *SlotRepository) Create(ctx context.Context, s *domain.AvailabilitySlot) error {
	m := toSlotModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*s = *toDomainSlot(m)
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	var m slotModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "slot", id)
	}
	return toDomainSlot(m), nil
}

func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	var m slotModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, notFound(err, "slot", id)
	}
	return toDomainSlot(m), nil
}

// ListByProfessional returns slots ordered by start time.
func (r *SlotRepository) ListByProfessional(ctx context.Context, professionalID int64, onlyFree bool) ([]domain.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).Where("professional_id = ?", professionalID)
	if onlyFree {
		q = q.Where("is_free = ?", true)
	}
	var rows []slotModel
	if err := q.Order("start_time, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AvailabilitySlot, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

type OverlapQuery struct {
	ProfessionalID int64
	Start          time.Time
	End            time.Time
	// ExcludeID skips one slot, usually the one being reserved.
	ExcludeID    int64
	OnlyReserved bool
}

// CountOverlapping counts slots with start <= q.End and end >= q.Start.
func (r *SlotRepository) CountOverlapping(ctx context.Context, q OverlapQuery) (int64, error) {
	db := r.db.WithContext(ctx).Model(&slotModel{}).
		Where("professional_id = ?", q.ProfessionalID).
		Where("start_time <= ? AND end_time >= ?", q.End.UTC(), q.Start.UTC())
	if q.ExcludeID > 0 {
		db = db.Where("id <> ?", q.ExcludeID)
	}
	if q.OnlyReserved {
		db = db.Where("is_free = ?", false)
	}
	var cnt int64
	if err := db.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SlotRepository) SetFree(ctx context.Context, id int64, free bool) error {
	res := r.db.WithContext(ctx).Model(&slotModel{ID: id}).Updates(map[string]any{
		"is_free":    free,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("slot", id)
	}
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&slotModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("slot", id)
	}
	return nil
}
