package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hugohenrick/warung-digital/internal/adapter/repository"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateLegacyKeys_MovesFirstAliasAndDropsTheRest(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	require.NoError(t, s.Set(ctx, "products", []byte(`[{"code":"A"}]`)))
	require.NoError(t, s.Set(ctx, "inventory", []byte(`[{"code":"B"}]`)))
	require.NoError(t, s.Set(ctx, "cart", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "transactions", []byte(`[]`)))

	report, err := storage.MigrateLegacyKeys(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"products":     storage.KeyProducts,
		"cart":         storage.CartKey(""),
		"transactions": storage.KeySales,
	}, report.Moved)
	assert.Equal(t, []string{"inventory"}, report.Dropped)

	raw, err := s.Get(ctx, storage.KeyProducts)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"code":"A"}]`, string(raw))

	for _, legacy := range []string{"products", "inventory", "cart", "transactions"} {
		_, err := s.Get(ctx, legacy)
		assert.ErrorIs(t, err, storage.ErrNotFound, legacy)
	}
}

func TestMigrateLegacyKeys_KeepsExistingCanonical(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	require.NoError(t, s.Set(ctx, storage.KeySales, []byte(`[{"id":"novo"}]`)))
	require.NoError(t, s.Set(ctx, "sales", []byte(`[{"id":"velho"}]`)))

	report, err := storage.MigrateLegacyKeys(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, report.Dropped)

	raw, err := s.Get(ctx, storage.KeySales)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"novo"}]`, string(raw))
}

func TestMigrateLegacyKeys_MergesThreshold(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	require.NoError(t, s.Set(ctx, storage.KeySettings, []byte(`{"general":{"shopName":"Warung Bu Sari"}}`)))
	require.NoError(t, s.Set(ctx, storage.KeyLowStockThreshold, []byte(`"8"`)))

	_, err := storage.MigrateLegacyKeys(ctx, s)
	require.NoError(t, err)

	var doc struct {
		General map[string]string `json:"general"`
		Stock   map[string]int    `json:"stock"`
	}
	found, err := storage.GetJSON(ctx, s, storage.KeySettings, &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Warung Bu Sari", doc.General["shopName"])
	assert.Equal(t, 8, doc.Stock["lowStockThreshold"])

	_, err = s.Get(ctx, storage.KeyLowStockThreshold)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMigrateLegacyKeys_SettingsThresholdWins(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	require.NoError(t, s.Set(ctx, storage.KeySettings, []byte(`{"stock":{"lowStockThreshold":3}}`)))
	require.NoError(t, s.Set(ctx, storage.KeyLowStockThreshold, []byte(`10`)))

	_, err := storage.MigrateLegacyKeys(ctx, s)
	require.NoError(t, err)

	raw, err := s.Get(ctx, storage.KeySettings)
	require.NoError(t, err)
	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `3`, string(doc["stock"]["lowStockThreshold"]))
}

func TestMigrateLegacyKeys_InvalidThresholdIsAnError(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	require.NoError(t, s.Set(ctx, storage.KeyLowStockThreshold, []byte(`"banyak"`)))

	_, err := storage.MigrateLegacyKeys(ctx, s)
	assert.Error(t, err)

	// Nada é apagado quando a migração falha
	_, err = s.Get(ctx, storage.KeyLowStockThreshold)
	assert.NoError(t, err)
}

func TestCheckWrites(t *testing.T) {
	assert.NoError(t, storage.CheckWrites([]string{"a", "b"}, map[string][]byte{"a": nil}))
	assert.ErrorIs(t, storage.CheckWrites([]string{"a"}, map[string][]byte{"c": []byte("1")}), storage.ErrKeyNotLocked)
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()

	var out map[string]int
	found, err := storage.GetJSON(ctx, s, "x", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "x", []byte(`{"n":1}`)))
	found, err = storage.GetJSON(ctx, s, "x", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, out["n"])

	require.NoError(t, s.Set(ctx, "bad", []byte("{")))
	_, err = storage.GetJSON(ctx, s, "bad", &out)
	assert.Error(t, err)
}
