package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/phuhao00/rpgserver/server/internal/model"
)

var (
	// ErrInvalidToken means the login token did not match the one issued
	// for the uid.
	ErrInvalidToken = errors.New("invalid login token")
	// ErrPlayerNotFound is returned by tables that have no row for a uid.
	ErrPlayerNotFound = errors.New("player not found")
)

// PlayerStore loads and saves player profiles.
type PlayerStore interface {
	// Load returns the profile for uid, creating the default profile for a
	// first login.
	Load(ctx context.Context, uid uint32) (model.Player, error)
	Save(ctx context.Context, p model.Player) error
}

// TokenVerifier checks the login token issued by the auth front-end.
type TokenVerifier interface {
	Verify(ctx context.Context, uid uint32, token string) error
}

// Defaults shape the profile created on first login.
type Defaults struct {
	Nickname string
	Avatars  []uint32
}

func (d Defaults) newPlayer(uid uint32, now time.Time) model.Player {
	return model.NewPlayer(uid, d.Nickname, d.Avatars, now)
}

// MemoryPlayerStore keeps profiles in process memory.
type MemoryPlayerStore struct {
	mu       sync.Mutex
	players  map[uint32]model.Player
	defaults Defaults
	now      func() time.Time
}

func NewMemoryPlayerStore(defaults Defaults) *MemoryPlayerStore {
	return &MemoryPlayerStore{
		players:  make(map[uint32]model.Player),
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *MemoryPlayerStore) Load(ctx context.Context, uid uint32) (model.Player, error) {
	if err := ctx.Err(); err != nil {
		return model.Player{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[uid]
	if !ok {
		p = s.defaults.newPlayer(uid, s.now())
		s.players[uid] = p
	}
	p.LastLogin = s.now()
	return p.Clone(), nil
}

func (s *MemoryPlayerStore) Save(ctx context.Context, p model.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.UID] = p.Clone()
	return nil
}

// StaticTokenVerifier accepts one fixed token for every uid. It backs the
// dummy auth mode used for local runs.
type StaticTokenVerifier struct {
	Token string
}

func (v StaticTokenVerifier) Verify(_ context.Context, uid uint32, token string) error {
	if uid == 0 || token == "" || token != v.Token {
		return ErrInvalidToken
	}
	return nil
}

// NopCache never hits. It stands in for redis when only postgres is set up.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
