package push

import "time"

// Subscription es una suscripción Web Push de un navegador. El
// endpoint es la clave natural: re-suscribir pisa las keys.
type Subscription struct {
	Endpoint  string
	P256dh    string
	Auth      string
	UserID    string
	CreatedAt time.Time
}
