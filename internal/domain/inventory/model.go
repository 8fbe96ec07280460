package inventory

import "time"

// Item es el stock de comida de una mascota. SachetCount es la fuente
// de verdad: sachets parciales no se trackean, y RemainingGrams se
// deriva siempre como SachetCount * SachetSizeGrams.
type Item struct {
	PetID           string
	FoodName        string
	SachetCount     int
	SachetSizeGrams int
	RemainingGrams  int // derivado, nunca persistido por su cuenta
	UpdatedAt       time.Time
}
