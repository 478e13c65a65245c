package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/rpgserver/server/internal/model"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type fakeTable struct {
	rows  map[uint32][]byte
	loads int
}

func newFakeTable() *fakeTable { return &fakeTable{rows: map[uint32][]byte{}} }

func (t *fakeTable) Load(_ context.Context, uid uint32) ([]byte, error) {
	t.loads++
	v, ok := t.rows[uid]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return v, nil
}

func (t *fakeTable) Upsert(_ context.Context, uid uint32, data []byte) error {
	t.rows[uid] = data
	return nil
}

var defaults = Defaults{Nickname: "Trailblazer", Avatars: []uint32{1309, 1001}}

func TestMemoryStoreCreatesDefaultProfile(t *testing.T) {
	s := NewMemoryPlayerStore(defaults)
	p, err := s.Load(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), p.UID)
	assert.Equal(t, "Trailblazer", p.Nickname)
	leader, ok := p.Lineup.Leader()
	require.True(t, ok)
	assert.Equal(t, uint32(1309), leader.AvatarID)

	p.LastEntryID = 2010101
	require.NoError(t, s.Save(context.Background(), p))
	again, err := s.Load(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(2010101), again.LastEntryID)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryPlayerStore(defaults).Load(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDBCacheStoreCacheAside(t *testing.T) {
	table, cache := newFakeTable(), newFakeCache()
	s := NewDBCacheStore(table, cache, 0, defaults)
	ctx := context.Background()

	// First login creates the row and warms the cache.
	p, err := s.Load(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Trailblazer", p.Nickname)
	assert.Contains(t, table.rows, uint32(5))
	assert.Contains(t, cache.entries, "player:5")

	// Cache hit: the table is not consulted.
	loads := table.loads
	_, err = s.Load(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, loads, table.loads)

	// Cache miss with an existing row refills the cache.
	stored := model.NewPlayer(6, "Stelle", []uint32{8001}, time.Now())
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	table.rows[6] = data
	got, err := s.Load(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "Stelle", got.Nickname)
	assert.Equal(t, data, cache.entries["player:6"])
}

func TestDBCacheStoreFallsThroughCacheErrors(t *testing.T) {
	table, cache := newFakeTable(), newFakeCache()
	cache.getErr = errors.New("connection refused")
	s := NewDBCacheStore(table, cache, time.Minute, defaults)

	stored := model.NewPlayer(9, "March", []uint32{1001}, time.Now())
	data, _ := json.Marshal(stored)
	table.rows[9] = data

	p, err := s.Load(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "March", p.Nickname)
}

func TestDBCacheStoreIgnoresCorruptCache(t *testing.T) {
	table, cache := newFakeTable(), newFakeCache()
	cache.entries["player:3"] = []byte("{not json")
	s := NewDBCacheStore(table, cache, time.Minute, defaults)

	p, err := s.Load(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), p.UID)
}

func TestTokenVerifiers(t *testing.T) {
	ctx := context.Background()

	static := StaticTokenVerifier{Token: "dummy"}
	assert.NoError(t, static.Verify(ctx, 1, "dummy"))
	assert.ErrorIs(t, static.Verify(ctx, 1, "nope"), ErrInvalidToken)
	assert.ErrorIs(t, static.Verify(ctx, 0, "dummy"), ErrInvalidToken)

	cache := newFakeCache()
	cache.entries[TokenKey(7)] = []byte("issued")
	redisV := NewRedisTokenVerifier(cache)
	assert.NoError(t, redisV.Verify(ctx, 7, "issued"))
	assert.ErrorIs(t, redisV.Verify(ctx, 7, "stale"), ErrInvalidToken)
	assert.ErrorIs(t, redisV.Verify(ctx, 8, "issued"), ErrInvalidToken)
	assert.ErrorIs(t, redisV.Verify(ctx, 7, ""), ErrInvalidToken)

	cache.getErr = errors.New("down")
	err := redisV.Verify(ctx, 7, "issued")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestOpenBackendWithoutConnections(t *testing.T) {
	b, err := OpenBackend(BackendConfig{})
	require.NoError(t, err)
	assert.Nil(t, b.DB)
	assert.Nil(t, b.Redis)
	require.NoError(t, b.Start(context.Background()))
	b.Stop()
}
