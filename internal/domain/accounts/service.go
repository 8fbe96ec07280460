package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled = errors.New("account disabled")
	ErrSignupClosed    = errors.New("signup disabled")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

const (
	pbkdf2Iterations = 120000
	pbkdf2KeyLen     = 32
	minPasswordLen   = 6
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Signup solo está abierto mientras no exista ningún usuario
// (bootstrap de primera corrida). Después devuelve ErrSignupClosed.
func (s *Service) Signup(ctx context.Context, username, password string) (User, Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, Session{}, ErrInvalidInput
	}

	has, err := s.HasUsers(ctx)
	if err != nil {
		return User{}, Session{}, err
	}
	if has {
		return User{}, Session{}, ErrSignupClosed
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashPassword(password),
		CreatedAt:    s.now(),
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return User{}, Session{}, err
	}

	sess, err := s.createSession(ctx, u.ID)
	if err != nil {
		return User{}, Session{}, err
	}
	return u, sess, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (User, Session, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return User{}, Session{}, ErrBadCredentials
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return User{}, Session{}, ErrBadCredentials
	}
	if !u.IsActive {
		return User{}, Session{}, ErrAccountDisabled
	}

	sess, err := s.createSession(ctx, u.ID)
	if err != nil {
		return User{}, Session{}, err
	}
	return u, sess, nil
}

// Logout borra la sesión si existe y devuelve el user dueño (para el
// audit log); token desconocido no es error.
func (s *Service) Logout(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return "", nil
	}
	return sess.UserID, s.repo.DeleteSession(ctx, token)
}

func (s *Service) UserFromSession(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return User{}, ErrNotFound
	}
	return s.repo.GetUserByID(ctx, sess.UserID)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if !VerifyPassword(u.PasswordHash, current) {
		return ErrBadCredentials
	}
	if len(next) < minPasswordLen {
		return ErrPasswordTooWeak
	}
	u.PasswordHash = hashPassword(next)
	return s.repo.UpdateUser(ctx, u)
}

func (s *Service) ResetPassword(ctx context.Context, userID, next string) error {
	if len(next) < minPasswordLen {
		return ErrPasswordTooWeak
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	u.PasswordHash = hashPassword(next)
	return s.repo.UpdateUser(ctx, u)
}

// UpdateSettingsInput usa punteros para PATCH real: nil = no tocar.
type UpdateSettingsInput struct {
	IsActive     *bool
	Email        *string
	NotifyEmail  *bool
	NotifyEmail1 *string
	NotifyEmail2 *string
	NotifyEmail3 *string
	SMTPHost     *string
	SMTPPort     *int
	SMTPUser     *string
	SMTPPass     *string
	SMTPFrom     *string
}

func (in UpdateSettingsInput) touchesEmail() bool {
	return in.Email != nil || in.NotifyEmail != nil ||
		in.NotifyEmail1 != nil || in.NotifyEmail2 != nil || in.NotifyEmail3 != nil ||
		in.SMTPHost != nil || in.SMTPPort != nil ||
		in.SMTPUser != nil || in.SMTPPass != nil || in.SMTPFrom != nil
}

// Errores de validación de settings de notificación; se exponen con el
// texto literal al caller.
var (
	ErrNotifyEmailRequired = errors.New("primary notification email is required")
	ErrSMTPHostRequired    = errors.New("smtp host is required")
	ErrSMTPUserRequired    = errors.New("smtp username is required")
	ErrSMTPPassRequired    = errors.New("smtp password is required")
	ErrSMTPFromRequired    = errors.New("smtp from address is required")
)

// UpdateSettings aplica is_active y la config de email/SMTP. Cuando el
// resultado deja notify habilitado exige los campos SMTP mínimos
// (port default 587).
func (s *Service) UpdateSettings(ctx context.Context, userID string, in UpdateSettingsInput) (User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, ErrNotFound
	}

	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if in.touchesEmail() {
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.NotifyEmail != nil {
			u.NotifyEmail = *in.NotifyEmail
		}
		if in.NotifyEmail1 != nil {
			u.NotifyEmail1 = *in.NotifyEmail1
		}
		if in.NotifyEmail2 != nil {
			u.NotifyEmail2 = *in.NotifyEmail2
		}
		if in.NotifyEmail3 != nil {
			u.NotifyEmail3 = *in.NotifyEmail3
		}
		if in.SMTPHost != nil {
			u.SMTPHost = *in.SMTPHost
		}
		if in.SMTPPort != nil {
			u.SMTPPort = *in.SMTPPort
		}
		if in.SMTPUser != nil {
			u.SMTPUser = *in.SMTPUser
		}
		if in.SMTPPass != nil {
			u.SMTPPass = *in.SMTPPass
		}
		if in.SMTPFrom != nil {
			u.SMTPFrom = *in.SMTPFrom
		}

		if u.NotifyEmail {
			if u.NotifyEmail1 == "" {
				return User{}, ErrNotifyEmailRequired
			}
			if u.SMTPHost == "" {
				return User{}, ErrSMTPHostRequired
			}
			if u.SMTPUser == "" {
				return User{}, ErrSMTPUserRequired
			}
			if u.SMTPPass == "" {
				return User{}, ErrSMTPPassRequired
			}
			if u.SMTPFrom == "" {
				return User{}, ErrSMTPFromRequired
			}
			if u.SMTPPort == 0 {
				u.SMTPPort = 587
			}
		}
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// NotifyConfigs resuelve los targets de email activos (un config por
// usuario con notify habilitado). Los recipients vacíos se filtran acá;
// los campos SMTP incompletos los saltea el dispatcher.
func (s *Service) NotifyConfigs(ctx context.Context) ([]NotifyConfig, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]NotifyConfig, 0)
	for _, u := range users {
		if !u.NotifyEmail {
			continue
		}
		recipients := make([]string, 0, 3)
		for _, r := range []string{u.NotifyEmail1, u.NotifyEmail2, u.NotifyEmail3} {
			if strings.TrimSpace(r) != "" {
				recipients = append(recipients, strings.TrimSpace(r))
			}
		}
		port := u.SMTPPort
		if port == 0 {
			port = 587
		}
		out = append(out, NotifyConfig{
			Host:       u.SMTPHost,
			Port:       port,
			User:       u.SMTPUser,
			Password:   u.SMTPPass,
			From:       u.SMTPFrom,
			Recipients: recipients,
		})
	}
	return out, nil
}

func (s *Service) createSession(ctx context.Context, userID string) (Session, error) {
	sess := Session{
		Token:     NewToken(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// NewToken genera 32 bytes aleatorios en base64 url-safe (equivalente
// a secrets.token_urlsafe(32)).
func NewToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // rand.Read no falla en plataformas soportadas
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// hashPassword produce "salt$hex" con pbkdf2-hmac-sha256, 120k
// iteraciones y salt de 16 bytes en hex.
func hashPassword(password string) string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + "$" + derive(password, saltHex)
}

// VerifyPassword compara en tiempo constante contra el formato "salt$hex".
func VerifyPassword(stored, password string) bool {
	salt, want, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	got := derive(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}
