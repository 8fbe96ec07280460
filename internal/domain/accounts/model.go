package accounts

import "time"

// User guarda el hash de password en formato "salt$hex" (pbkdf2-sha256).
// Los campos SMTP/notify son la configuración de avisos por email del
// usuario; strings vacíos / port 0 significan "sin configurar".
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	IsActive     bool

	Email        string
	NotifyEmail  bool
	NotifyEmail1 string
	NotifyEmail2 string
	NotifyEmail3 string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Session es un token opaco en cookie httponly; no expira server-side
// (el max-age de la cookie manda).
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// NotifyConfig es un target de email ya resuelto desde un User con
// notify habilitado. El dispatcher saltea targets incompletos.
type NotifyConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Recipients []string
}
