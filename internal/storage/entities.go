package storage

import (
	"time"

	"github.com/google/uuid"
)

// KeyDataFile remembers the active events file across runs.
const KeyDataFile = "data_file_path"

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Delivery is one reminder that was raised to the user.
type Delivery struct {
	ID            string
	Title         string
	OccursAt      time.Time
	OffsetMinutes int
	DeliveredAt   time.Time
}

func NewDelivery(title string, occursAt time.Time, offsetMinutes int, deliveredAt time.Time) Delivery {
	return Delivery{
		ID:            uuid.NewString(),
		Title:         title,
		OccursAt:      occursAt,
		OffsetMinutes: offsetMinutes,
		DeliveredAt:   deliveredAt,
	}
}

type DeliveryListFilter struct {
	Since  *time.Time
	Limit  int
	Offset int
}
