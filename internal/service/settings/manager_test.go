package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hugohenrick/warung-digital/internal/adapter/repository"
	domain "github.com/hugohenrick/warung-digital/internal/domain/settings"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingKeyYieldsDefaults(t *testing.T) {
	m, err := NewManager(context.Background(), repository.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), m.Get())
	assert.Equal(t, 5, m.LowStockThreshold())
}

func TestLoad_OlderDocumentGetsNewFieldsMerged(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeySettings, []byte(`{"general":{"shopName":"Warung Bu Sri"},"stock":{"lowStockThreshold":2}}`)))

	m, err := NewManager(ctx, store, nil, nil)
	require.NoError(t, err)

	s := m.Get()
	assert.Equal(t, "Warung Bu Sri", s.General.ShopName)
	assert.Equal(t, "IDR", s.General.Currency)
	assert.Equal(t, 2, s.Stock.LowStockThreshold)
	assert.True(t, s.Stock.LowStockNotification)
	assert.Equal(t, domain.Defaults().Receipt, s.Receipt)
}

func TestLoad_InvalidDocumentFallsBackToDefaults(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeySettings, []byte(`{"stock":{"lowStockThreshold":"banyak"}}`)))

	m, err := NewManager(ctx, store, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), m.Get())
}

func TestUpdateField(t *testing.T) {
	store := repository.NewMemoryStore()
	bus := events.NewBus("test", nil)
	ctx := context.Background()

	published := 0
	unsubscribe := bus.Subscribe(func(events.Event) { published++ }, events.TopicSettingsChanged)
	defer unsubscribe()

	m, err := NewManager(ctx, store, bus, nil)
	require.NoError(t, err)
	defer m.Close()

	s, err := m.UpdateField(ctx, "stock", "lowStockThreshold", json.RawMessage(`3`))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Stock.LowStockThreshold)
	assert.Equal(t, 3, m.LowStockThreshold())
	assert.Equal(t, 1, published)

	other, err := NewManager(ctx, store, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, other.LowStockThreshold(), "valor persistido")

	_, err = m.UpdateField(ctx, "stock", "color", json.RawMessage(`"red"`))
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = m.UpdateField(ctx, "theme", "color", json.RawMessage(`"red"`))
	assert.ErrorIs(t, err, domain.ErrUnknownSection)

	_, err = m.UpdateField(ctx, "stock", "lowStockThreshold", json.RawMessage(`"tiga"`))
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
	assert.Equal(t, 3, m.LowStockThreshold())
	assert.Equal(t, 1, published)
}

func TestReset(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	m, err := NewManager(ctx, store, nil, nil)
	require.NoError(t, err)
	_, err = m.UpdateField(ctx, "general", "shopName", json.RawMessage(`"Toko Maju"`))
	require.NoError(t, err)

	ok, err := m.Reset(ctx, confirm.Never)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Toko Maju", m.Get().General.ShopName)

	ok, err = m.Reset(ctx, confirm.Always)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Defaults(), m.Get())

	_, err = store.Get(ctx, storage.KeySettings)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemoteChangeReloads(t *testing.T) {
	store := repository.NewMemoryStore()
	bus := events.NewBus("test", nil)
	ctx := context.Background()

	m, err := NewManager(ctx, store, bus, nil)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, store.Set(ctx, storage.KeySettings, []byte(`{"stock":{"lowStockThreshold":9}}`)))
	bus.Deliver(events.Event{Topic: events.TopicSettingsChanged, Key: storage.KeySettings, Origin: "outro"})
	assert.Equal(t, 9, m.LowStockThreshold())
}

// stallingStore segura um Get, depois da leitura, até release ser fechado
type stallingStore struct {
	storage.Store
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (s *stallingStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.Store.Get(ctx, key)
	if s.armed.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return raw, err
}

func TestLoad_OlderReadDoesNotOverwriteNewerWrite(t *testing.T) {
	ctx := context.Background()
	store := &stallingStore{Store: repository.NewMemoryStore(), read: make(chan struct{}), release: make(chan struct{})}
	m, err := NewManager(ctx, store, events.NewBus("test", nil), nil)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- m.Load(ctx) }()
	<-store.read

	_, err = m.UpdateField(ctx, "stock", "lowStockThreshold", json.RawMessage(`9`))
	require.NoError(t, err)

	close(store.release)
	require.NoError(t, <-done)
	assert.Equal(t, 9, m.LowStockThreshold())
}

// atomicOnlyStore recusa escritas fora de Update
type atomicOnlyStore struct {
	storage.Store
}

func (atomicOnlyStore) Remove(context.Context, string) error {
	return errors.New("remoção fora de Update")
}

func TestReset_GoesThroughAtomicUpdate(t *testing.T) {
	ctx := context.Background()
	store := atomicOnlyStore{Store: repository.NewMemoryStore()}
	m, err := NewManager(ctx, store, nil, nil)
	require.NoError(t, err)

	_, err = m.UpdateField(ctx, "general", "shopName", json.RawMessage(`"Warung Pak Budi"`))
	require.NoError(t, err)

	proceeded, err := m.Reset(ctx, confirm.Always)
	require.NoError(t, err)
	assert.True(t, proceeded)
	assert.Equal(t, domain.Defaults(), m.Get())

	_, err = store.Get(ctx, storage.KeySettings)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
