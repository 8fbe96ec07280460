package weights

import "time"

// Entry es una medición puntual de peso.
type Entry struct {
	ID         string
	PetID      string
	WeightKg   float64
	RecordedAt time.Time
}
