package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
)

type appRepo struct {
	pool *pgxpool.Pool
}

const appColumns = `id, name, description, base_url, redirect_endpoint,
	logo_endpoint, secret, token_lifetime, created_at, owner_id`

func scanApp(row pgx.Row) (domain.App, error) {
	var app domain.App
	var ownerID *uuid.UUID
	err := row.Scan(&app.ID, &app.Name, &app.Description, &app.BaseURL,
		&app.RedirectEndpoint, &app.LogoEndpoint, &app.Secret,
		&app.TokenLifetime, &app.CreatedAt, &ownerID)
	if err != nil {
		return domain.App{}, err
	}
	app.OwnerID = ownerID
	return app, nil
}

func (r *appRepo) SelectByID(ctx context.Context, id int64) (domain.App, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE id = $1`, id)
	app, err := scanApp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.App{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.App{}, repository.ErrDatabase
	}
	return app, nil
}

func (r *appRepo) SelectByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.App, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+appColumns+` FROM apps WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, repository.ErrDatabase
	}
	defer rows.Close()

	var out []domain.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, repository.ErrDatabase
		}
		out = append(out, app)
	}
	if rows.Err() != nil {
		return nil, repository.ErrDatabase
	}
	return out, nil
}

func (r *appRepo) Insert(ctx context.Context, app domain.App) (domain.App, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO apps (name, description, base_url, redirect_endpoint,
			logo_endpoint, secret, token_lifetime, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+appColumns,
		app.Name, app.Description, app.BaseURL, app.RedirectEndpoint,
		app.LogoEndpoint, app.Secret, app.TokenLifetime, app.OwnerID)
	created, err := scanApp(row)
	if err != nil {
		return domain.App{}, repository.ErrDatabase
	}
	return created, nil
}

func (r *appRepo) Update(ctx context.Context, app domain.App) (domain.App, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE apps SET
			name = $1, description = $2, base_url = $3,
			redirect_endpoint = $4, logo_endpoint = $5,
			secret = $6, token_lifetime = $7
		WHERE id = $8
		RETURNING `+appColumns,
		app.Name, app.Description, app.BaseURL, app.RedirectEndpoint,
		app.LogoEndpoint, app.Secret, app.TokenLifetime, app.ID)
	updated, err := scanApp(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.App{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.App{}, repository.ErrDatabase
	}
	return updated, nil
}
