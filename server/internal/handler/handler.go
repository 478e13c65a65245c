package handler

import (
	"context"
	"errors"
	"time"

	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/dispatch"
	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

// Lineup energy shown by the client; it is not consumed by anything the
// server simulates.
const (
	lineupMp    = 5
	lineupMaxMp = 5
)

// Handlers serves the post-login command catalogue.
type Handlers struct {
	index *data.Index
	now   func() time.Time
}

func New(index *data.Index) *Handlers {
	return &Handlers{index: index, now: time.Now}
}

// Register wires every handler into d. Each route answers failures with its
// own response schema carrying the retcode.
func (h *Handlers) Register(d *dispatch.Dispatcher) {
	dispatch.Register(d, protocol.CmdPlayerLoginCsReq, h.PlayerLogin,
		dispatch.WithFailure(protocol.CmdPlayerLoginScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.PlayerLoginScRsp{Retcode: code}
		}))
	dispatch.Register(d, protocol.CmdPlayerHeartBeatCsReq, h.PlayerHeartBeat,
		dispatch.WithFailure(protocol.CmdPlayerHeartBeatScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.PlayerHeartBeatScRsp{Retcode: code}
		}))
	dispatch.Register(d, protocol.CmdGetCurLineupDataCsReq, h.GetCurLineupData,
		dispatch.WithFailure(protocol.CmdGetCurLineupDataScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.GetCurLineupDataScRsp{Retcode: code}
		}))
	dispatch.Register(d, protocol.CmdGetCurSceneInfoCsReq, h.GetCurSceneInfo,
		dispatch.WithFailure(protocol.CmdGetCurSceneInfoScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.GetCurSceneInfoScRsp{Retcode: code}
		}))
	dispatch.Register(d, protocol.CmdEnterSceneCsReq, h.EnterScene,
		dispatch.WithFailure(protocol.CmdEnterSceneScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.EnterSceneScRsp{Retcode: code}
		}))
	dispatch.Register(d, protocol.CmdLeaveSceneCsReq, h.LeaveScene,
		dispatch.WithFailure(protocol.CmdLeaveSceneScRsp, func(code protocol.Retcode) protocol.Message {
			return &protocol.LeaveSceneScRsp{Retcode: code}
		}))
}

func (h *Handlers) PlayerLogin(_ context.Context, sess *session.Session, req *protocol.PlayerLoginCsReq) error {
	p := sess.PlayerInfo()
	return sess.Send(protocol.CmdPlayerLoginScRsp, &protocol.PlayerLoginScRsp{
		BasicInfo: &protocol.PlayerBasicInfo{
			Nickname: p.Nickname,
			Level:    p.Level,
			Exp:      p.Exp,
			Stamina:  p.Stamina,
		},
		ServerTimestampMs: utils.TimestampMS(h.now()),
		LoginRandom:       req.LoginRandom,
	})
}

func (h *Handlers) PlayerHeartBeat(_ context.Context, sess *session.Session, req *protocol.PlayerHeartBeatCsReq) error {
	return sess.Send(protocol.CmdPlayerHeartBeatScRsp, &protocol.PlayerHeartBeatScRsp{
		ClientTimeMs: req.ClientTimeMs,
		ServerTimeMs: utils.TimestampMS(h.now()),
	})
}

func (h *Handlers) GetCurLineupData(_ context.Context, sess *session.Session, _ *protocol.GetCurLineupDataCsReq) error {
	return sess.Send(protocol.CmdGetCurLineupDataScRsp, &protocol.GetCurLineupDataScRsp{
		Lineup: LineupInfo(sess.PlayerInfo().Lineup),
	})
}

func (h *Handlers) GetCurSceneInfo(_ context.Context, sess *session.Session, _ *protocol.GetCurSceneInfoCsReq) error {
	return sess.Send(protocol.CmdGetCurSceneInfoScRsp, &protocol.GetCurSceneInfoScRsp{
		Scene: sess.Scene().Current(),
	})
}

// EnterScene moves the session into the requested entry. On success the
// response goes out first, then the notify carrying the new scene.
func (h *Handlers) EnterScene(_ context.Context, sess *session.Session, req *protocol.EnterSceneCsReq) error {
	inst, err := sess.Scene().Enter(req.EntryID, sess.Owner())
	if errors.Is(err, scene.ErrUnknownEntrance) {
		return protocol.WithRetcode(protocol.RetSceneEntryIDNotMatch, err)
	}
	if err != nil {
		return err
	}

	p := sess.PlayerInfo()
	p.LastEntryID = req.EntryID
	sess.SetPlayer(p)

	if err := sess.Send(protocol.CmdEnterSceneScRsp, &protocol.EnterSceneScRsp{}); err != nil {
		return err
	}
	return sess.Send(protocol.CmdEnterSceneByServerScNotify, &protocol.EnterSceneByServerScNotify{
		Reason: protocol.EnterSceneReasonNone,
		Lineup: LineupInfo(p.Lineup),
		Scene:  inst.SceneInfo(),
	})
}

func (h *Handlers) LeaveScene(_ context.Context, sess *session.Session, _ *protocol.LeaveSceneCsReq) error {
	if !sess.Scene().Leave() {
		return protocol.WithRetcode(protocol.RetSceneNotInScene, errors.New("leave scene: not in a scene"))
	}
	return sess.Send(protocol.CmdLeaveSceneScRsp, &protocol.LeaveSceneScRsp{})
}

// LineupInfo converts a stored lineup to its wire form.
func LineupInfo(l model.Lineup) *protocol.LineupInfo {
	info := &protocol.LineupInfo{
		Index:      l.Index,
		Name:       l.Name,
		LeaderSlot: l.LeaderSlot,
		Mp:         lineupMp,
		MaxMp:      lineupMaxMp,
		AvatarList: make([]*protocol.LineupAvatar, 0, len(l.Avatars)),
	}
	for _, a := range l.Avatars {
		info.AvatarList = append(info.AvatarList, &protocol.LineupAvatar{
			ID:         a.AvatarID,
			Slot:       a.Slot,
			AvatarType: protocol.AvatarTypeFormal,
			Hp:         a.Hp,
		})
	}
	return info
}
