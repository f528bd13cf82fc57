// Package apps is the registry of relying-party apps. It fronts the app
// repository with a read-through cache: app rows are read on every token
// operation and mutate rarely.
package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/brouclean/helloauth/internal/cache"
	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/observability/logger"
)

const cacheKeyPrefixApp = "app:"

const appCacheTTL = 2 * time.Minute

// Registry resolves, lists and mutates app registrations. App 0 is served
// from configuration and never reaches the repository.
type Registry struct {
	repo          repository.AppRepository
	cache         cache.Cache
	authenticator domain.App
	ownerMail     string
	sf            singleflight.Group
}

// Deps contains the registry dependencies.
type Deps struct {
	Repo          repository.AppRepository
	Cache         cache.Cache
	Authenticator domain.App
	// OwnerMail is the mail address whose sessions also own app 0 in
	// listings. Empty disables the behavior.
	OwnerMail string
}

// NewRegistry builds a Registry.
func NewRegistry(d Deps) *Registry {
	return &Registry{
		repo:          d.Repo,
		cache:         d.Cache,
		authenticator: d.Authenticator,
		ownerMail:     d.OwnerMail,
	}
}

// Authenticator returns the immutable app 0.
func (r *Registry) Authenticator() domain.App {
	return r.authenticator
}

// Get returns the app with the given id, or repository.ErrNotFound.
func (r *Registry) Get(ctx context.Context, id int64) (domain.App, error) {
	if id == domain.AuthenticatorAppID {
		return r.authenticator, nil
	}

	key := cacheKeyPrefixApp + fmt.Sprintf("%d", id)
	if r.cache != nil {
		if b, ok := r.cache.Get(key); ok {
			var app domain.App
			if json.Unmarshal(b, &app) == nil {
				return app, nil
			}
		}
	}

	// singleflight collapses concurrent misses for the same id into one
	// storage read.
	v, err, _ := r.sf.Do(key, func() (any, error) {
		app, err := r.repo.SelectByID(ctx, id)
		if err != nil {
			return domain.App{}, err
		}
		if r.cache != nil {
			if b, err := json.Marshal(app); err == nil {
				r.cache.Set(key, b, appCacheTTL)
			}
		}
		return app, nil
	})
	if err != nil {
		return domain.App{}, err
	}
	return v.(domain.App), nil
}

// GetOrAuthenticator resolves the app, falling back to app 0 when the id
// is unknown. Never fails.
func (r *Registry) GetOrAuthenticator(ctx context.Context, id int64) domain.App {
	app, err := r.Get(ctx, id)
	if err != nil {
		return r.authenticator
	}
	return app
}

// ListOwnedBy returns the apps owned by the user, plus app 0 when the
// caller's mail is the configured owner mail.
func (r *Registry) ListOwnedBy(ctx context.Context, userID uuid.UUID, mail string) ([]domain.App, error) {
	apps, err := r.repo.SelectByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.ownerMail != "" && strings.EqualFold(mail, r.ownerMail) {
		apps = append(apps, r.authenticator)
	}
	return apps, nil
}

// Create registers a new app for the given owner. Creating app 0 is an
// idempotent no-op returning the authenticator unchanged.
func (r *Registry) Create(ctx context.Context, app domain.App, ownerID uuid.UUID) (domain.App, error) {
	if app.IsAuthenticator() {
		return r.authenticator, nil
	}
	if _, err := app.Domain(); err != nil {
		return domain.App{}, err
	}
	app.OwnerID = &ownerID

	created, err := r.repo.Insert(ctx, app)
	if err != nil {
		return domain.App{}, err
	}
	logger.From(ctx).Info("app registered",
		logger.AppID(created.ID), logger.UserID(ownerID.String()))
	return created, nil
}

// Update overwrites an existing registration and drops the cached row.
// Updating app 0 is an idempotent no-op. Ownership is the caller's
// responsibility (access.CanUpdate); this layer only persists.
func (r *Registry) Update(ctx context.Context, app domain.App) (domain.App, error) {
	if app.IsAuthenticator() {
		return r.authenticator, nil
	}
	if _, err := app.Domain(); err != nil {
		return domain.App{}, err
	}

	updated, err := r.repo.Update(ctx, app)
	if err != nil {
		return domain.App{}, err
	}
	if r.cache != nil {
		r.cache.Delete(cacheKeyPrefixApp + fmt.Sprintf("%d", app.ID))
	}
	logger.From(ctx).Info("app updated", logger.AppID(updated.ID))
	return updated, nil
}
