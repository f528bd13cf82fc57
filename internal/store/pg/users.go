package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, name, birthday, avatar_url, mail, mail_confirmed,
	password_hash, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var birthday *time.Time
	err := row.Scan(&u.ID, &u.Name, &birthday, &u.AvatarURL, &u.Mail,
		&u.MailConfirmed, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	if birthday != nil {
		u.Birthday = *birthday
	}
	return u, nil
}

func nullIfZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *userRepo) SelectByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.User{}, repository.ErrDatabase
	}
	return u, nil
}

func (r *userRepo) SelectByMail(ctx context.Context, mail string) (domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(mail) = lower($1)`, mail)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.User{}, repository.ErrDatabase
	}
	return u, nil
}

func (r *userRepo) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, birthday, avatar_url, mail, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Name, nullIfZero(user.Birthday), user.AvatarURL, user.Mail,
		user.PasswordHash)
	created, err := scanUser(row)
	if isUniqueViolation(err) {
		return domain.User{}, repository.ErrConflict
	}
	if err != nil {
		return domain.User{}, repository.ErrDatabase
	}
	return created, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, in repository.UpdateProfileInput) (domain.User, error) {
	// A mail change drops the confirmed flag in the same statement.
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			name = $1, birthday = $2, avatar_url = $3, mail = $4,
			mail_confirmed = (lower(mail) = lower($4) AND mail_confirmed)
		WHERE id = $5
		RETURNING `+userColumns,
		in.Name, nullIfZero(in.Birthday), in.AvatarURL, in.Mail, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, repository.ErrNotFound
	}
	if isUniqueViolation(err) {
		return domain.User{}, repository.ErrConflict
	}
	if err != nil {
		return domain.User{}, repository.ErrDatabase
	}
	return u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return repository.ErrDatabase
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) ConfirmMail(ctx context.Context, id uuid.UUID) (string, error) {
	var mail string
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET mail_confirmed = TRUE WHERE id = $1 RETURNING mail`, id).Scan(&mail)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", repository.ErrDatabase
	}
	return mail, nil
}
