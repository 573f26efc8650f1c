package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
)

// Erros específicos do repositório
var (
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrUserDuplicateEmail = errors.New("usuário com mesmo email já existe")
	ErrUsersExist         = errors.New("já existem usuários cadastrados")
)

// UserRepository implementa a interface user.Repository sobre o storage.Store
type UserRepository struct {
	store storage.Store
}

// NewUserRepository cria uma nova instância de UserRepository
func NewUserRepository(store storage.Store) user.Repository {
	return &UserRepository{
		store: store,
	}
}

// Create implementa user.Repository.Create
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.update(ctx, func(users []*user.User) ([]*user.User, error) {
		for _, existing := range users {
			if existing.Email == u.Email {
				return nil, ErrUserDuplicateEmail
			}
		}
		return append(users, u), nil
	})
}

// FindByID implementa user.Repository.FindByID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByEmail implementa user.Repository.FindByEmail
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	email = user.NormalizeEmail(email)
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// List implementa user.Repository.List
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	return r.load(ctx)
}

// CreateFirst implementa user.Repository.CreateFirst. A verificação e a gravação acontecem
// na mesma atualização atômica.
func (r *UserRepository) CreateFirst(ctx context.Context, u *user.User) error {
	return r.update(ctx, func(users []*user.User) ([]*user.User, error) {
		if len(users) > 0 {
			return nil, ErrUsersExist
		}
		return []*user.User{u}, nil
	})
}

// UpdateLastLogin implementa user.Repository.UpdateLastLogin
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	return r.update(ctx, func(users []*user.User) ([]*user.User, error) {
		for _, u := range users {
			if u.ID == id {
				u.MarkLogin(time.Now())
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
}

func (r *UserRepository) load(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	if _, err := storage.GetJSON(ctx, r.store, storage.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("erro ao buscar usuários: %w", err)
	}
	return users, nil
}

func (r *UserRepository) update(ctx context.Context, fn func([]*user.User) ([]*user.User, error)) error {
	return r.store.Update(ctx, []string{storage.KeyUsers}, func(cur map[string][]byte) (map[string][]byte, error) {
		var users []*user.User
		if raw, ok := cur[storage.KeyUsers]; ok {
			if err := json.Unmarshal(raw, &users); err != nil {
				return nil, fmt.Errorf("erro ao decodificar usuários: %w", err)
			}
		}

		next, err := fn(users)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar usuários: %w", err)
		}
		return map[string][]byte{storage.KeyUsers: raw}, nil
	})
}
