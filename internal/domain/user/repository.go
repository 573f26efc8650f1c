package user

import (
	"context"
)

// Repository define a interface para operações de repositório de usuários
type Repository interface {
	// Create cria um novo usuário
	Create(ctx context.Context, u *User) error

	// FindByID busca um usuário pelo ID
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail busca um usuário pelo email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List lista todos os usuários
	List(ctx context.Context) ([]*User, error)

	// CreateFirst cria o usuário apenas se ainda não houver nenhum cadastrado
	CreateFirst(ctx context.Context, u *User) error

	// UpdateLastLogin atualiza o último login do usuário
	UpdateLastLogin(ctx context.Context, id string) error
}
