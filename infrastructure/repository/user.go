package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

type UserRepository interface {
	// GetUserByEmail and GetUserByID return nil, nil when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID int) (*domain.User, error)
	ListUser(ctx context.Context) ([]*domain.User, error)
}

// memoryUserRepository is read-only after construction.
type memoryUserRepository struct {
	byID    map[int]domain.User
	byEmail map[string]int
}

// NewMemoryUserRepository serves a fixed user list, typically the fixture users.
func NewMemoryUserRepository(users []domain.User) UserRepository {
	repo := &memoryUserRepository{
		byID:    make(map[int]domain.User, len(users)),
		byEmail: make(map[string]int, len(users)),
	}

	for _, user := range users {
		repo.byID[user.ID] = user
		repo.byEmail[strings.ToLower(user.Email)] = user.ID
	}

	return repo
}

func (r *memoryUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}

	user := r.byID[id]
	return &user, nil
}

func (r *memoryUserRepository) GetUserByID(ctx context.Context, userID int) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := r.byID[userID]
	if !ok {
		return nil, nil
	}

	return &user, nil
}

func (r *memoryUserRepository) ListUser(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}
