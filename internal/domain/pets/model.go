package pets

import "time"

// Pet es el perfil de una mascota del hogar. Los límites diarios son
// opcionales: nil = usar el default global para el count, sin tope para
// los gramos. Un cero explícito en DailyLimitCount se respeta literal
// (la mascota no puede comer ese día).
type Pet struct {
	ID   string
	Name string

	AgeYears *int
	Sex      string
	DietType string
	Breed    string

	LastVetVisit      *time.Time
	EstimatedWeightKg *float64

	// Foto: o una URL externa o un blob subido (base64), nunca ambos.
	PhotoURL  string
	PhotoBlob []byte
	PhotoMime string

	// Horarios sugeridos de comida ("HH:MM"), solo informativos.
	FeedTime1 string
	FeedTime2 string

	DailyLimitCount *int
	DailyGramsLimit *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
