package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("chave não encontrada")
	ErrKeyNotLocked = errors.New("escrita em chave fora da atualização")
)

// Chaves canônicas persistidas
const (
	KeyProducts   = "warung_products"
	KeySales      = "warung_sales"
	KeySettings   = "warung_settings"
	KeyUsers      = "warung_users"
	keyCartPrefix = "warung_cart"
)

// CartKey retorna a chave do carrinho de uma sessão
func CartKey(session string) string {
	if session == "" {
		return keyCartPrefix
	}
	return keyCartPrefix + ":" + session
}

// Store define a porta de armazenamento chave-valor
type Store interface {
	// Get retorna o valor bruto ou ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set grava o valor de uma chave
	Set(ctx context.Context, key string, value []byte) error

	// Remove apaga uma chave; remover uma chave ausente não é erro
	Remove(ctx context.Context, key string) error

	// Update lê as chaves informadas e aplica as escritas devolvidas por fn de forma atômica.
	// Chaves ausentes não aparecem no mapa recebido; um valor nil no mapa devolvido remove a chave.
	Update(ctx context.Context, keys []string, fn UpdateFunc) error
}

// UpdateFunc calcula as novas versões das chaves a partir dos valores atuais
type UpdateFunc func(current map[string][]byte) (map[string][]byte, error)

// CheckWrites garante que fn só escreveu chaves que foram travadas
func CheckWrites(keys []string, writes map[string][]byte) error {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	for k := range writes {
		if _, ok := allowed[k]; !ok {
			return fmt.Errorf("%w: %s", ErrKeyNotLocked, k)
		}
	}
	return nil
}

// GetJSON decodifica o valor de uma chave em dest. Retorna false se a chave não existir.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao ler %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("erro ao decodificar %s: %w", key, err)
	}
	return true, nil
}
