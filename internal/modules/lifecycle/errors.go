package lifecycle

import (
	"fmt"

	"clickservice/internal/domain"
)

var (
	ErrMissingCapability       = fmt.Errorf("professional does not offer the service: %w", domain.ErrConflict)
	ErrProfessionalUnavailable = fmt.Errorf("professional is not available: %w", domain.ErrConflict)
	ErrForeignSlot             = fmt.Errorf("slot belongs to another professional: %w", domain.ErrConflict)
	ErrAlreadyReviewed         = fmt.Errorf("request already has a review: %w", domain.ErrConflict)
	ErrNoCandidate             = fmt.Errorf("no candidate could take the request: %w", domain.ErrConflict)
)
