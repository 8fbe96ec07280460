package feedings

import "time"

// FeedingEvent es inmutable una vez creado: no hay update, solo borrado
// por cascada de mascota o limpieza de mantenimiento. Siempre se crea a
// través de la admisión (Service.Log / Service.LogUngrouped) para que
// todo evento haya pasado el chequeo de límites vigente al momento.
type FeedingEvent struct {
	ID          string
	FedAt       time.Time
	AmountGrams int
	DietType    string
	PetID       string // vacío = evento legacy sin mascota
}

// DayTotal es el agregado por día calendario que consume stats.
type DayTotal struct {
	Count int
	Grams int
}

// Status es el estado global del día (dashboard principal).
type Status struct {
	LastFedAt         *time.Time
	LastDietType      string
	DailyCount        int
	RemainingGrams    int
	DailyLimit        int
	RemainingFeedings int
}

// PetStatus es el estado del día para una mascota.
type PetStatus struct {
	PetID             string
	LastFedAt         *time.Time
	LastDietType      string
	DailyCount        int
	DailyLimit        int
	RemainingFeedings int
}
