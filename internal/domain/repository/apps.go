package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
)

// AppRepository persists registered apps. The authenticator app never goes
// through here; callers guard app 0 before reaching storage.
type AppRepository interface {
	// SelectByID returns the app or ErrNotFound.
	SelectByID(ctx context.Context, id int64) (domain.App, error)

	// SelectByOwner returns all apps owned by the user, newest first.
	SelectByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.App, error)

	// Insert stores a new app and returns it with the assigned id.
	Insert(ctx context.Context, app domain.App) (domain.App, error)

	// Update overwrites the mutable fields of an existing app.
	// Returns ErrNotFound when the id does not exist. Last write wins.
	Update(ctx context.Context, app domain.App) (domain.App, error)
}
