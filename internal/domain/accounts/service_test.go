package accounts_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/accounts"
)

func TestSignup_FirstRunOnly(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	// 1) Primera corrida: signup abierto.
	u, sess, err := svc.Signup(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if u.Username != "alice" || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}
	if sess.Token == "" {
		t.Fatal("expected a session token")
	}

	// 2) Con un usuario existente se cierra.
	_, _, err = svc.Signup(ctx, "bob", "secret123")
	if !errors.Is(err, accounts.ErrSignupClosed) {
		t.Fatalf("expected ErrSignupClosed, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, "alice", "secret123"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, accounts.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "secret123"); !errors.Is(err, accounts.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown user, got %v", err)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	off := false
	if _, err := svc.UpdateSettings(ctx, u.ID, accounts.UpdateSettingsInput{IsActive: &off}); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	_, _, err = svc.Login(ctx, "alice", "secret123")
	if !errors.Is(err, accounts.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	u, sess, err := svc.Signup(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	got, err := svc.UserFromSession(ctx, sess.Token)
	if err != nil || got.ID != u.ID {
		t.Fatalf("expected session to resolve to %s, got %+v (%v)", u.ID, got, err)
	}

	ownerID, err := svc.Logout(ctx, sess.Token)
	if err != nil || ownerID != u.ID {
		t.Fatalf("logout: expected owner %s, got %s (%v)", u.ID, ownerID, err)
	}
	if _, err := svc.UserFromSession(ctx, sess.Token); !errors.Is(err, accounts.ErrNotFound) {
		t.Fatalf("expected session gone after logout, got %v", err)
	}

	// Token desconocido no es error.
	if _, err := svc.Logout(ctx, "no-such-token"); err != nil {
		t.Fatalf("logout of unknown token should be a noop, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newpass1"); !errors.Is(err, accounts.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret123", "short"); !errors.Is(err, accounts.ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret123", "newpass1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "newpass1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestPasswordHashFormat(t *testing.T) {
	// El hash va como "salt$hex" y verifica en tiempo constante.
	svc := accounts.NewService(memory.NewAccountsRepo())
	created, _, err := svc.Signup(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if !strings.Contains(created.PasswordHash, "$") {
		t.Fatalf("expected salt$hex format, got %q", created.PasswordHash)
	}
	if !accounts.VerifyPassword(created.PasswordHash, "secret123") {
		t.Fatal("verify rejected the right password")
	}
	if accounts.VerifyPassword(created.PasswordHash, "secret124") {
		t.Fatal("verify accepted a wrong password")
	}
	if accounts.VerifyPassword("malformed", "secret123") {
		t.Fatal("verify accepted a malformed hash")
	}
}

func TestUpdateSettings_NotifyValidation(t *testing.T) {
	svc := accounts.NewService(memory.NewAccountsRepo())
	ctx := context.Background()

	u, _, err := svc.Signup(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	on := true
	email := "alerts@example.com"
	if _, err := svc.UpdateSettings(ctx, u.ID, accounts.UpdateSettingsInput{NotifyEmail: &on, NotifyEmail1: &email}); !errors.Is(err, accounts.ErrSMTPHostRequired) {
		t.Fatalf("expected ErrSMTPHostRequired, got %v", err)
	}

	host := "smtp.example.com"
	user := "mailer"
	pass := "hunter2"
	from := "feeder@example.com"
	got, err := svc.UpdateSettings(ctx, u.ID, accounts.UpdateSettingsInput{
		NotifyEmail:  &on,
		NotifyEmail1: &email,
		SMTPHost:     &host,
		SMTPUser:     &user,
		SMTPPass:     &pass,
		SMTPFrom:     &from,
	})
	if err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	if got.SMTPPort != 587 {
		t.Fatalf("expected default port 587, got %d", got.SMTPPort)
	}

	cfgs, err := svc.NotifyConfigs(ctx)
	if err != nil {
		t.Fatalf("notify configs failed: %v", err)
	}
	if len(cfgs) != 1 || len(cfgs[0].Recipients) != 1 || cfgs[0].Recipients[0] != email {
		t.Fatalf("unexpected notify configs: %+v", cfgs)
	}
}
