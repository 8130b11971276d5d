package repository

import (
	"context"
	"time"

	"clickservice/internal/domain"

	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

type commissionModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	PaymentID int64     `gorm:"column:payment_id;not null;index"`
	RequestID *int64    `gorm:"column:request_id;index"`
	Rate      float64   `gorm:"column:rate;not null"`
	Base      float64   `gorm:"column:base;not null"`
	Amount    float64   `gorm:"column:amount;not null"`
	Date      time.Time `gorm:"column:commission_date;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commissionModel) TableName() string { return "commissions" }

func toDomainCommission(m commissionModel) *domain.Commission {
	return &domain.Commission{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		RequestID: m.RequestID,
		Rate:      m.Rate,
		Base:      m.Base,
		Amount:    m.Amount,
		Date:      domain.DateOf(m.Date),
		CreatedAt: m.CreatedAt,
	}
}

func toCommissionModel(c *domain.Commission) commissionModel {
	return commissionModel{
		ID:        c.ID,
		PaymentID: c.PaymentID,
		RequestID: c.RequestID,
		Rate:      c.Rate,
		Base:      c.Base,
		Amount:    c.Amount,
		Date:      domain.DateOf(c.Date),
		CreatedAt: c.CreatedAt,
	}
}

func (r *CommissionRepository) Create(ctx context.Context, c *domain.Commission) error {
	m := toCommissionModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*c = *toDomainCommission(m)
	return nil
}

func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*domain.Commission, error) {
	var m commissionModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "commission", id)
	}
	return toDomainCommission(m), nil
}

func (r *CommissionRepository) Update(ctx context.Context, c *domain.Commission) error {
	m := toCommissionModel(c)
	res := r.db.WithContext(ctx).Model(&commissionModel{ID: c.ID}).
		Select("payment_id", "rate", "base", "amount", "commission_date").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("commission", c.ID)
	}
	return nil
}

func (r *CommissionRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&commissionModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("commission", id)
	}
	return nil
}

// DateRange bounds are inclusive calendar dates; nil means open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (d DateRange) apply(q *gorm.DB) *gorm.DB {
	if d.From != nil {
		q = q.Where("commission_date >= ?", domain.DateOf(*d.From))
	}
	if d.To != nil {
		q = q.Where("commission_date <= ?", domain.DateOf(*d.To))
	}
	return q
}

func (r *CommissionRepository) List(ctx context.Context, rng DateRange) ([]domain.Commission, error) {
	var rows []commissionModel
	if err := rng.apply(r.db.WithContext(ctx)).Order("commission_date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Commission, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainCommission(m))
	}
	return out, nil
}

func (r *CommissionRepository) Summary(ctx context.Context, rng DateRange) (*domain.CommissionSummary, error) {
	var row struct {
		Count       int64
		TotalBase   float64
		TotalAmount float64
	}
	err := rng.apply(r.db.WithContext(ctx).Model(&commissionModel{})).
		Select("COUNT(*) AS count, COALESCE(SUM(base), 0) AS total_base, COALESCE(SUM(amount), 0) AS total_amount").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.CommissionSummary{
		From:        rng.From,
		To:          rng.To,
		Count:       row.Count,
		TotalBase:   domain.Round2(row.TotalBase),
		TotalAmount: domain.Round2(row.TotalAmount),
	}, nil
}
