package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/actor/messages"
	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/dispatch"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/store"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

const (
	// DefaultIdleTimeout disconnects an authenticated client that sends nothing.
	DefaultIdleTimeout = 90 * time.Second
	// DefaultAuthTimeout is the time allowed to authenticate after connecting.
	DefaultAuthTimeout = 60 * time.Second
	// storeTimeout bounds profile loads and saves made from the mailbox.
	storeTimeout = 5 * time.Second
)

// SessionDeps are the collaborators shared by every PlayerSessionActor.
type SessionDeps struct {
	Index        *data.Index
	Registry     *scene.Registry
	Dispatcher   *dispatch.Dispatcher
	Tokens       store.TokenVerifier
	Players      store.PlayerStore
	WorldManager *actor.PID
	Session      session.Options
	AuthTimeout  time.Duration
	IdleTimeout  time.Duration
}

// PlayerSessionActor owns one client connection. Its mailbox is the only
// writer of the session's state, so handlers for one session never overlap.
type PlayerSessionActor struct {
	deps SessionDeps
	sess *session.Session
	log  *zap.Logger
}

// NewPlayerSessionActor creates a new PlayerSessionActor instance.
func NewPlayerSessionActor(deps SessionDeps) actor.Actor {
	if deps.AuthTimeout <= 0 {
		deps.AuthTimeout = DefaultAuthTimeout
	}
	if deps.IdleTimeout <= 0 {
		deps.IdleTimeout = DefaultIdleTimeout
	}
	return &PlayerSessionActor{deps: deps, log: utils.Logger()}
}

// PropsForSession creates actor.Props for PlayerSessionActor.
func PropsForSession(deps SessionDeps) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor { return NewPlayerSessionActor(deps) })
}

// Receive is the main message handling loop for the PlayerSessionActor.
func (a *PlayerSessionActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.log.Debug("session actor started", zap.String("pid", ctx.Self().Id))

	case *actor.Stopping:
		a.cleanup(ctx)

	case *actor.Stopped:
		a.log.Debug("session actor stopped", zap.String("pid", ctx.Self().Id))

	case *actor.ReceiveTimeout:
		a.log.Info("no client activity in time; stopping session",
			zap.String("session", a.sessionID()),
			zap.Uint32("uid", a.uid()))
		ctx.Stop(ctx.Self())

	case *messages.ClientConnected:
		machine := scene.NewMachine(a.deps.Index, a.deps.Registry)
		a.sess = session.New(msg.Outbound, msg.RemoteAddr, machine, a.deps.Session)
		a.log = a.log.With(zap.String("session", a.sess.ID()), zap.String("remote", msg.RemoteAddr))
		a.log.Info("client connected", zap.String("transport", msg.Transport))
		ctx.SetReceiveTimeout(a.deps.AuthTimeout)

	case *messages.ClientPacket:
		a.handlePacket(ctx, protocol.CmdID(msg.CmdID), msg.Body)

	case *messages.ClientDisconnected:
		a.log.Info("client disconnected", zap.String("reason", msg.Reason), zap.Uint32("uid", a.uid()))
		ctx.Stop(ctx.Self())

	case *messages.TerminateSession:
		a.log.Info("terminating session", zap.String("reason", msg.Reason), zap.Uint32("uid", a.uid()))
		if msg.Kick != 0 && a.sess != nil {
			kick := &protocol.PlayerKickOutScNotify{KickType: protocol.KickType(msg.Kick)}
			if err := a.sess.Send(protocol.CmdPlayerKickOutScNotify, kick); err != nil {
				a.log.Debug("kick notify not delivered", zap.Error(err))
			}
		}
		ctx.Stop(ctx.Self())

	default:
		a.log.Warn("session actor received unknown message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (a *PlayerSessionActor) handlePacket(ctx actor.Context, cmd protocol.CmdID, body []byte) {
	if a.sess == nil {
		a.log.Warn("packet before connect; dropping", zap.Stringer("cmd", cmd))
		return
	}
	metrics.PacketsReceived.WithLabelValues(metrics.CommandLabel(cmd)).Inc()
	if !a.sess.Allow() {
		metrics.PacketsDropped.Inc()
		a.log.Debug("rate limited; dropping packet", zap.Stringer("cmd", cmd))
		return
	}

	if cmd == protocol.CmdPlayerGetTokenCsReq {
		a.handleGetToken(ctx, body)
		return
	}
	if !a.sess.LoggedIn() {
		a.log.Info("command before login; rejecting", zap.Stringer("cmd", cmd))
		if _, err := a.deps.Dispatcher.Reject(a.sess, cmd, protocol.RetNotLoggedIn); err != nil {
			a.stopOnClosed(ctx, err)
		}
		return
	}

	ctx.SetReceiveTimeout(a.deps.IdleTimeout)
	err := a.deps.Dispatcher.Dispatch(context.Background(), a.sess, cmd, body)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrChannelClosed):
		a.stopOnClosed(ctx, err)
	case errors.Is(err, dispatch.ErrUnroutableCommand):
		a.log.Debug("unroutable command", zap.Stringer("cmd", cmd))
	case errors.Is(err, dispatch.ErrMalformedPayload):
		a.log.Warn("discarding malformed message", zap.Stringer("cmd", cmd), zap.Error(err))
	default:
		a.log.Error("handler failed", zap.Stringer("cmd", cmd), zap.Uint32("uid", a.uid()), zap.Error(err))
	}
}

// handleGetToken authenticates the session, loads the profile and registers
// it with the world manager.
func (a *PlayerSessionActor) handleGetToken(ctx actor.Context, body []byte) {
	var req protocol.PlayerGetTokenCsReq
	if err := protocol.Unmarshal(body, &req); err != nil {
		a.log.Warn("discarding malformed message", zap.Stringer("cmd", protocol.CmdPlayerGetTokenCsReq), zap.Error(err))
		return
	}
	if a.sess.LoggedIn() {
		a.reply(ctx, &protocol.PlayerGetTokenScRsp{Retcode: protocol.RetRepeatLogin, UID: a.uid()})
		return
	}

	opCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := a.deps.Tokens.Verify(opCtx, req.UID, req.Token); err != nil {
		code := protocol.RetTokenInvalid
		if !errors.Is(err, store.ErrInvalidToken) {
			code = protocol.RetServerInternalError
			a.log.Error("token verification failed", zap.Uint32("uid", req.UID), zap.Error(err))
		} else {
			a.log.Info("authentication failed", zap.Uint32("uid", req.UID))
		}
		a.reply(ctx, &protocol.PlayerGetTokenScRsp{Retcode: code, UID: req.UID})
		ctx.SetReceiveTimeout(a.deps.AuthTimeout)
		return
	}

	player, err := a.deps.Players.Load(opCtx, req.UID)
	if err != nil {
		a.log.Error("loading player failed", zap.Uint32("uid", req.UID), zap.Error(err))
		a.reply(ctx, &protocol.PlayerGetTokenScRsp{Retcode: protocol.RetServerInternalError, UID: req.UID})
		return
	}
	a.sess.SetPlayer(player)
	a.log = a.log.With(zap.Uint32("uid", req.UID))
	a.log.Info("player authenticated")

	if a.deps.WorldManager != nil {
		info := a.sess.Info()
		ctx.Send(a.deps.WorldManager, &messages.PlayerEnteredWorld{
			UID:        info.UID,
			SessionID:  info.ID,
			RemoteAddr: info.RemoteAddr,
			PlayerPID:  ctx.Self(),
		})
	}
	ctx.SetReceiveTimeout(a.deps.IdleTimeout)
	a.reply(ctx, &protocol.PlayerGetTokenScRsp{UID: req.UID})
}

func (a *PlayerSessionActor) reply(ctx actor.Context, rsp *protocol.PlayerGetTokenScRsp) {
	if err := a.sess.Send(protocol.CmdPlayerGetTokenScRsp, rsp); err != nil {
		a.stopOnClosed(ctx, err)
	}
}

func (a *PlayerSessionActor) stopOnClosed(ctx actor.Context, err error) {
	if errors.Is(err, session.ErrChannelClosed) {
		a.log.Debug("outbound closed; stopping session")
		ctx.Stop(ctx.Self())
		return
	}
	a.log.Error("send failed", zap.Error(err))
}

// cleanup closes the session, unregisters it and saves the profile.
func (a *PlayerSessionActor) cleanup(ctx actor.Context) {
	ctx.CancelReceiveTimeout()
	if a.sess == nil {
		return
	}
	a.sess.Close()
	if !a.sess.LoggedIn() {
		return
	}
	if a.deps.WorldManager != nil {
		ctx.Send(a.deps.WorldManager, &messages.PlayerLeftWorld{UID: a.uid(), PlayerPID: ctx.Self()})
	}
	opCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := a.deps.Players.Save(opCtx, a.sess.PlayerInfo()); err != nil {
		a.log.Error("saving player failed", zap.Error(err))
	}
}

func (a *PlayerSessionActor) uid() uint32 {
	if a.sess == nil {
		return 0
	}
	return a.sess.PlayerUID()
}

func (a *PlayerSessionActor) sessionID() string {
	if a.sess == nil {
		return ""
	}
	return a.sess.ID()
}
