package domain

import "time"

// Review is the client's rating of one completed request. OrderID is the
// request id and is unique.
type Review struct {
	ID               int64     `json:"id"`
	OrderID          int64     `json:"order_id" validate:"required,gt=0"`
	Rating           int       `json:"rating" validate:"required,min=1,max=5"`
	Comment          string    `json:"comment" validate:"required,min=10,max=1000"`
	Date             time.Time `json:"date"`
	ReviewerIdentity int64     `json:"reviewer_identity" validate:"required,gt=0"`
	ProfessionalID   int64     `json:"professional_id" validate:"required,gt=0"`
	CreatedAt        time.Time `json:"created_at"`
}

type RatingSummary struct {
	ProfessionalID int64       `json:"professional_id"`
	TotalReviews   int64       `json:"total_reviews"`
	AverageRating  float64     `json:"average_rating"`
	Stars          map[int]int `json:"stars"`
}

// AverageRating is the arithmetic mean of ratings, 0 for none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
