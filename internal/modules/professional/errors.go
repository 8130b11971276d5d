package professional

import (
	"fmt"

	"clickservice/internal/domain"
)

var (
	ErrProfileExists   = fmt.Errorf("professional profile already exists: %w", domain.ErrConflict)
	ErrHasAssignedWork = fmt.Errorf("assigned requests: %w", domain.ErrConflict)
)
