package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cat-feeder/internal/domain/accounts"

	"github.com/jackc/pgx/v5/pgconn"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

const userColumns = `
	id, username, password_hash, created_at, is_active,
	email, notify_email, notify_email_1, notify_email_2, notify_email_3,
	smtp_host, smtp_port, smtp_user, smtp_pass, smtp_from`

func (r *AccountsRepo) CreateUser(ctx context.Context, u accounts.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, password_hash, created_at, is_active,
			email, notify_email, notify_email_1, notify_email_2, notify_email_3,
			smtp_host, smtp_port, smtp_user, smtp_pass, smtp_from
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt, u.IsActive,
		u.Email, u.NotifyEmail, u.NotifyEmail1, u.NotifyEmail2, u.NotifyEmail3,
		u.SMTPHost, u.SMTPPort, u.SMTPUser, u.SMTPPass, u.SMTPFrom,
	)
	// 23505 = unique_violation en el índice de username
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return accounts.ErrUsernameTaken
	}
	return err
}

func (r *AccountsRepo) UpdateUser(ctx context.Context, u accounts.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			password_hash = $2,
			is_active = $3,
			email = $4,
			notify_email = $5,
			notify_email_1 = $6,
			notify_email_2 = $7,
			notify_email_3 = $8,
			smtp_host = $9,
			smtp_port = $10,
			smtp_user = $11,
			smtp_pass = $12,
			smtp_from = $13
		WHERE id = $1
	`,
		u.ID, u.PasswordHash, u.IsActive,
		u.Email, u.NotifyEmail, u.NotifyEmail1, u.NotifyEmail2, u.NotifyEmail3,
		u.SMTPHost, u.SMTPPort, u.SMTPUser, u.SMTPPass, u.SMTPFrom,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (r *AccountsRepo) GetUserByID(ctx context.Context, id string) (accounts.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *AccountsRepo) GetUserByUsername(ctx context.Context, username string) (accounts.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+userColumns+` FROM users WHERE LOWER(username) = $1`,
		strings.ToLower(username),
	)
	return scanUser(row)
}

func (r *AccountsRepo) ListUsers(ctx context.Context) ([]accounts.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT`+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accounts.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *AccountsRepo) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *AccountsRepo) CreateSession(ctx context.Context, s accounts.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at) VALUES ($1,$2,$3)
	`, s.Token, s.UserID, s.CreatedAt)
	return err
}

func (r *AccountsRepo) GetSession(ctx context.Context, token string) (accounts.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM sessions WHERE token = $1`, token)

	var s accounts.Session
	err := row.Scan(&s.Token, &s.UserID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return accounts.Session{}, accounts.ErrNotFound
	}
	return s, err
}

func (r *AccountsRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func scanUser(row rowScanner) (accounts.User, error) {
	var u accounts.User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.IsActive,
		&u.Email, &u.NotifyEmail, &u.NotifyEmail1, &u.NotifyEmail2, &u.NotifyEmail3,
		&u.SMTPHost, &u.SMTPPort, &u.SMTPUser, &u.SMTPPass, &u.SMTPFrom,
	)
	if err == sql.ErrNoRows {
		return accounts.User{}, accounts.ErrNotFound
	}
	return u, err
}
