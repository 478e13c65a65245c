package actor

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/actor/messages"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

// ReasonLoginElsewhere terminates a session replaced by a newer login.
const ReasonLoginElsewhere = "logged in elsewhere"

type onlineSession struct {
	id         string
	remoteAddr string
	pid        *actor.PID
}

// WorldManagerActor is the registry of authenticated sessions. It owns the
// uid to session map; nothing else reads or writes it.
type WorldManagerActor struct {
	sessions map[uint32]onlineSession
	log      *zap.Logger
}

// NewWorldManagerActor creates a new WorldManagerActor.
func NewWorldManagerActor() actor.Actor {
	return &WorldManagerActor{
		sessions: make(map[uint32]onlineSession),
		log:      utils.Logger().Named("world"),
	}
}

// Receive is the message handling loop for the WorldManagerActor.
func (a *WorldManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.log.Info("world manager started", zap.String("pid", ctx.Self().Id))

	case *actor.Stopping:
		a.log.Info("world manager stopping", zap.Int("online", len(a.sessions)))

	case *actor.Stopped:
		metrics.OnlineSessions.Set(0)
		a.log.Info("world manager stopped")

	case *messages.PlayerEnteredWorld:
		if prev, ok := a.sessions[msg.UID]; ok && !prev.pid.Equal(msg.PlayerPID) {
			a.log.Info("player logged in again; terminating older session",
				zap.Uint32("uid", msg.UID),
				zap.String("remote", msg.RemoteAddr),
				zap.String("session", prev.id))
			ctx.Send(prev.pid, &messages.TerminateSession{
				Reason: ReasonLoginElsewhere,
				Kick:   uint32(protocol.KickTypeLoginElsewhere),
			})
		}
		a.sessions[msg.UID] = onlineSession{id: msg.SessionID, remoteAddr: msg.RemoteAddr, pid: msg.PlayerPID}
		metrics.OnlineSessions.Set(float64(len(a.sessions)))
		a.log.Debug("player entered world", zap.Uint32("uid", msg.UID), zap.String("session", msg.SessionID))

	case *messages.PlayerLeftWorld:
		cur, ok := a.sessions[msg.UID]
		if !ok || !cur.pid.Equal(msg.PlayerPID) {
			return
		}
		delete(a.sessions, msg.UID)
		metrics.OnlineSessions.Set(float64(len(a.sessions)))
		a.log.Debug("player left world", zap.Uint32("uid", msg.UID), zap.String("session", cur.id))

	case *messages.OnlineCountRequest:
		ctx.Respond(&messages.OnlineCountResponse{Count: len(a.sessions)})

	case *messages.SessionLookupRequest:
		cur, ok := a.sessions[msg.UID]
		ctx.Respond(&messages.SessionLookupResponse{Found: ok, SessionID: cur.id, PlayerPID: cur.pid})

	default:
		a.log.Warn("world manager received unknown message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// PropsForWorldManager creates actor.Props for WorldManagerActor.
func PropsForWorldManager() *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor { return NewWorldManagerActor() })
}
