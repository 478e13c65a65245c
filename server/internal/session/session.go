package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
)

// Options tunes a session.
type Options struct {
	// PacketsPerSecond caps inbound packets; zero disables the limit.
	PacketsPerSecond float64
	Burst            int
}

// Session is the server-side state of one connected client.
//
// Send may be called from any goroutine. Everything else is owned by the
// session's actor and must only be touched from its mailbox.
type Session struct {
	id          string
	remoteAddr  string
	connectedAt time.Time

	out     *Queue
	limiter *rate.Limiter
	machine *scene.Machine

	player   model.Player
	loggedIn bool
}

// New binds a session to the outbound queue of its connection.
func New(out *Queue, remoteAddr string, machine *scene.Machine, opts Options) *Session {
	s := &Session{
		id:          uuid.NewString(),
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		out:         out,
		machine:     machine,
	}
	if opts.PacketsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.PacketsPerSecond)
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.PacketsPerSecond), burst)
	}
	return s
}

func (s *Session) ID() string         { return s.id }
func (s *Session) RemoteAddr() string { return s.remoteAddr }

// Send encodes msg under cmd and enqueues it for the transport writer.
// Concurrent calls keep the order in which they acquire the queue.
func (s *Session) Send(cmd protocol.CmdID, msg protocol.Message) error {
	frame, err := protocol.EncodeFrame(cmd, protocol.Marshal(msg))
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return s.out.Push(frame)
}

// Allow reports whether one more inbound packet fits the rate limit.
func (s *Session) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

func (s *Session) LoggedIn() bool { return s.loggedIn }

// PlayerUID is zero until the session has authenticated.
func (s *Session) PlayerUID() uint32 {
	return s.player.UID
}

// PlayerInfo returns a copy of the bound player record.
func (s *Session) PlayerInfo() model.Player {
	return s.player.Clone()
}

// SetPlayer binds the authenticated player record to the session.
func (s *Session) SetPlayer(p model.Player) {
	s.player = p.Clone()
	s.loggedIn = true
}

// Scene returns the session's scene state machine.
func (s *Session) Scene() *scene.Machine { return s.machine }

// Owner describes the player for scene layout.
func (s *Session) Owner() scene.Owner {
	return scene.Owner{UID: s.player.UID, Lineup: s.player.Lineup.Clone()}
}

// Info is the registry view of the session.
func (s *Session) Info() model.Session {
	return model.Session{
		ID:          s.id,
		UID:         s.player.UID,
		RemoteAddr:  s.remoteAddr,
		ConnectedAt: s.connectedAt,
	}
}

// Close disconnects the scene machine and closes the outbound queue. Later
// sends fail with ErrChannelClosed. Close is idempotent.
func (s *Session) Close() {
	s.machine.Disconnect()
	s.out.Close()
}

func (s *Session) Closed() bool { return s.out.Closed() }
