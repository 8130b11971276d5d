package availability

import (
	"fmt"

	"clickservice/internal/domain"
)

var (
	ErrSlotAlreadyReserved = fmt.Errorf("slot already reserved: %w", domain.ErrConflict)
	ErrSlotOverlap         = fmt.Errorf("slot overlaps a reserved slot: %w", domain.ErrConflict)
	ErrSlotHeld            = fmt.Errorf("slot held by an assigned request: %w", domain.ErrConflict)
	ErrSlotReserved        = fmt.Errorf("slot is reserved: %w", domain.ErrConflict)
)
