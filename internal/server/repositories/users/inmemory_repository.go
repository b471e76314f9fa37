package users

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/faithchat/relay/internal/server/models"
)

// InMemoryRepository keeps credentials in a map. Records live as long as the
// process.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int
	now    func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]models.User), now: time.Now}
}

func (r *InMemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Identity]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.nextID++
	stored := *user
	stored.ID = strconv.Itoa(r.nextID)
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[user.Identity] = stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByIdentity(_ context.Context, identity string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[identity]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &u, nil
}

func (r *InMemoryRepository) UpdatePasswordHash(_ context.Context, identity string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[identity]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = append([]byte(nil), hash...)
	u.UpdatedAt = r.now()
	r.users[identity] = u
	return nil
}
