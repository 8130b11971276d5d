package repository

import (
	"context"
	"time"

	"clickservice/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type reviewModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	OrderID          int64     `gorm:"column:order_id;not null;uniqueIndex"`
	Rating           int       `gorm:"column:rating;not null"`
	Comment          string    `gorm:"column:comment;size:1000;not null"`
	Date             time.Time `gorm:"column:review_date;not null"`
	ReviewerIdentity int64     `gorm:"column:reviewer_identity;not null;index"`
	ProfessionalID   int64     `gorm:"column:professional_id;not null;index"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func toDomainReview(m reviewModel) *domain.Review {
	return &domain.Review{
		ID:               m.ID,
		OrderID:          m.OrderID,
		Rating:           m.Rating,
		Comment:          m.Comment,
		Date:             domain.DateOf(m.Date),
		ReviewerIdentity: m.ReviewerIdentity,
		ProfessionalID:   m.ProfessionalID,
		CreatedAt:        m.CreatedAt,
	}
}

func toReviewModel(r *domain.Review) reviewModel {
	return reviewModel{
		ID:               r.ID,
		OrderID:          r.OrderID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		Date:             domain.DateOf(r.Date),
		ReviewerIdentity: r.ReviewerIdentity,
		ProfessionalID:   r.ProfessionalID,
		CreatedAt:        r.CreatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	m := toReviewModel(rev)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("order %d already has a review", rev.OrderID)
		}
		return err
	}
	*rev = *toDomainReview(m)
	return nil
}

func (r *ReviewRepository) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("order_id = ?", orderID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *ReviewRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Review, error) {
	var m reviewModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error; err != nil {
		return nil, notFound(err, "review for order", orderID)
	}
	return toDomainReview(m), nil
}

func (r *ReviewRepository) ListByProfessional(ctx context.Context, professionalID int64) ([]domain.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("professional_id = ?", professionalID))
}

func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewer int64) ([]domain.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("reviewer_identity = ?", reviewer))
}

func (r *ReviewRepository) list(q *gorm.DB) ([]domain.Review, error) {
	var rows []reviewModel
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReview(m))
	}
	return out, nil
}

// RatingsOf returns every rating of the professional; the average is always
// recomputed from the full set.
func (r *ReviewRepository) RatingsOf(ctx context.Context, professionalID int64) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&reviewModel{}).
		Where("professional_id = ?", professionalID).
		Order("id").
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
