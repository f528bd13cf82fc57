// Package memory is an in-process store used by tests and by dev setups
// that do not want a database. Semantics mirror the postgres adapter,
// unique-mail conflicts included.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (memoryAdapter) Name() string { return "memory" }

func (memoryAdapter) Open(ctx context.Context, cfg store.Config) (store.Store, error) {
	return New(), nil
}

// Memory implements store.Store.
type Memory struct {
	mu        sync.RWMutex
	apps      map[int64]domain.App
	users     map[uuid.UUID]domain.User
	nextAppID int64
}

// New builds an empty in-memory store.
func New() *Memory {
	return &Memory{
		apps:      map[int64]domain.App{},
		users:     map[uuid.UUID]domain.User{},
		nextAppID: 1,
	}
}

func (m *Memory) Apps() repository.AppRepository   { return (*appRepo)(m) }
func (m *Memory) Users() repository.UserRepository { return (*userRepo)(m) }

func (m *Memory) Migrate(ctx context.Context) error { return nil }
func (m *Memory) Ping(ctx context.Context) error    { return nil }
func (m *Memory) Close() error                      { return nil }

// ---- apps ----

type appRepo Memory

func (r *appRepo) SelectByID(ctx context.Context, id int64) (domain.App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return domain.App{}, repository.ErrNotFound
	}
	return app, nil
}

func (r *appRepo) SelectByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.App
	for _, app := range r.apps {
		if app.OwnerID != nil && *app.OwnerID == ownerID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *appRepo) Insert(ctx context.Context, app domain.App) (domain.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = r.nextAppID
	r.nextAppID++
	app.CreatedAt = time.Now().UTC()
	r.apps[app.ID] = app
	return app, nil
}

func (r *appRepo) Update(ctx context.Context, app domain.App) (domain.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.apps[app.ID]
	if !ok {
		return domain.App{}, repository.ErrNotFound
	}
	// created_at and owner are immutable through update
	app.CreatedAt = cur.CreatedAt
	app.OwnerID = cur.OwnerID
	r.apps[app.ID] = app
	return app, nil
}

// ---- users ----

type userRepo Memory

func (r *userRepo) SelectByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) SelectByMail(ctx context.Context, mail string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Mail, mail) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (r *userRepo) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Mail, user.Mail) {
			return domain.User{}, repository.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return user, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, in repository.UpdateProfileInput) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && strings.EqualFold(other.Mail, in.Mail) {
			return domain.User{}, repository.ErrConflict
		}
	}
	if !strings.EqualFold(u.Mail, in.Mail) {
		u.MailConfirmed = false
	}
	u.Name = in.Name
	u.Birthday = in.Birthday
	u.AvatarURL = in.AvatarURL
	u.Mail = in.Mail
	r.users[id] = u
	return u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	r.users[id] = u
	return nil
}

func (r *userRepo) ConfirmMail(ctx context.Context, id uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	u.MailConfirmed = true
	r.users[id] = u
	return u.Mail, nil
}
