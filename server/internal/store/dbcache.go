package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

// DefaultCacheTTL is how long a cached profile lives in redis.
const DefaultCacheTTL = time.Hour

// Cache is the key/value subset of redis the stores need.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PlayerTable persists serialized profiles by uid.
type PlayerTable interface {
	Load(ctx context.Context, uid uint32) ([]byte, error)
	Upsert(ctx context.Context, uid uint32, data []byte) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// PostgresTable stores profiles as JSONB rows of the players table.
type PostgresTable struct {
	db *sql.DB
}

func NewPostgresTable(db *sql.DB) *PostgresTable {
	return &PostgresTable{db: db}
}

const createPlayersTable = `CREATE TABLE IF NOT EXISTS players (
	uid  BIGINT PRIMARY KEY,
	data JSONB  NOT NULL
)`

// EnsureSchema creates the players table if it does not exist.
func (t *PostgresTable) EnsureSchema(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, createPlayersTable); err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

func (t *PostgresTable) Load(ctx context.Context, uid uint32) ([]byte, error) {
	var data []byte
	err := t.db.QueryRowContext(ctx, "SELECT data FROM players WHERE uid = $1", int64(uid)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select player %d: %w", uid, err)
	}
	return data, nil
}

func (t *PostgresTable) Upsert(ctx context.Context, uid uint32, data []byte) error {
	_, err := t.db.ExecContext(ctx,
		"INSERT INTO players (uid, data) VALUES ($1, $2) ON CONFLICT (uid) DO UPDATE SET data = EXCLUDED.data",
		int64(uid), data)
	if err != nil {
		return fmt.Errorf("upsert player %d: %w", uid, err)
	}
	return nil
}

// DBCacheStore is a cache-aside PlayerStore: redis in front of postgres.
// Cache errors are logged and fall through to the table.
type DBCacheStore struct {
	table    PlayerTable
	cache    Cache
	ttl      time.Duration
	defaults Defaults
	now      func() time.Time
}

func NewDBCacheStore(table PlayerTable, cache Cache, ttl time.Duration, defaults Defaults) *DBCacheStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &DBCacheStore{
		table:    table,
		cache:    cache,
		ttl:      ttl,
		defaults: defaults,
		now:      time.Now,
	}
}

func playerKey(uid uint32) string {
	return "player:" + strconv.FormatUint(uint64(uid), 10)
}

func (s *DBCacheStore) Load(ctx context.Context, uid uint32) (model.Player, error) {
	key := playerKey(uid)

	val, hit, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		utils.Logger().Warn("cache get failed", zap.Uint32("uid", uid), zap.Error(err))
	case hit:
		var p model.Player
		if err := json.Unmarshal(val, &p); err == nil {
			p.LastLogin = s.now()
			return p, nil
		}
		utils.Logger().Warn("discarding corrupt cache entry", zap.Uint32("uid", uid))
	default:
		utils.Logger().Debug("cache miss", zap.Uint32("uid", uid))
	}

	data, err := s.table.Load(ctx, uid)
	if errors.Is(err, ErrPlayerNotFound) {
		p := s.defaults.newPlayer(uid, s.now())
		utils.Logger().Info("creating profile for new player", zap.Uint32("uid", uid))
		if err := s.Save(ctx, p); err != nil {
			return model.Player{}, err
		}
		return p, nil
	}
	if err != nil {
		return model.Player{}, err
	}

	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Player{}, fmt.Errorf("decode player %d: %w", uid, err)
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		utils.Logger().Warn("cache set failed", zap.Uint32("uid", uid), zap.Error(err))
	}
	p.LastLogin = s.now()
	return p, nil
}

// Save writes the table first, then refreshes the cache.
func (s *DBCacheStore) Save(ctx context.Context, p model.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player %d: %w", p.UID, err)
	}
	if err := s.table.Upsert(ctx, p.UID, data); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, playerKey(p.UID), data, s.ttl); err != nil {
		utils.Logger().Warn("cache refresh failed", zap.Uint32("uid", p.UID), zap.Error(err))
	}
	return nil
}

// RedisTokenVerifier checks tokens the auth front-end stores under
// session_token:<uid>.
type RedisTokenVerifier struct {
	cache Cache
}

func NewRedisTokenVerifier(cache Cache) *RedisTokenVerifier {
	return &RedisTokenVerifier{cache: cache}
}

func TokenKey(uid uint32) string {
	return "session_token:" + strconv.FormatUint(uint64(uid), 10)
}

func (v *RedisTokenVerifier) Verify(ctx context.Context, uid uint32, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	stored, ok, err := v.cache.Get(ctx, TokenKey(uid))
	if err != nil {
		return fmt.Errorf("lookup token for %d: %w", uid, err)
	}
	if !ok || string(stored) != token {
		return ErrInvalidToken
	}
	return nil
}

// Backend owns the connections behind the redis and postgres collaborators.
type Backend struct {
	DB    *sql.DB
	Redis *redis.Client
}

// BackendConfig holds connection parameters.
type BackendConfig struct {
	PostgresURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// OpenBackend opens the configured connections. Either side may be left
// unconfigured.
func OpenBackend(cfg BackendConfig) (*Backend, error) {
	b := &Backend{}
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("sql.Open failed: %w", err)
		}
		b.DB = db
	}
	if cfg.RedisAddr != "" {
		b.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return b, nil
}

// Start pings every opened connection.
func (b *Backend) Start(ctx context.Context) error {
	if b.DB != nil {
		if err := b.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("db.Ping failed: %w", err)
		}
		utils.Logger().Info("postgres connected")
	}
	if b.Redis != nil {
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis.Ping failed: %w", err)
		}
		utils.Logger().Info("redis connected", zap.String("addr", b.Redis.Options().Addr))
	}
	return nil
}

// Stop closes every opened connection.
func (b *Backend) Stop() {
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			utils.Logger().Error("closing postgres failed", zap.Error(err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			utils.Logger().Error("closing redis failed", zap.Error(err))
		}
	}
}
