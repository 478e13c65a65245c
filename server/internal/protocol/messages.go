package protocol

// PlayerGetTokenCsReq is the first packet of every connection: the token
// issued by the auth front-end for uid.
type PlayerGetTokenCsReq struct {
	UID      uint32
	Token    string
	Platform uint32
}

func (m *PlayerGetTokenCsReq) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.UID))
	b = appendString(b, 2, m.Token)
	b = appendUint(b, 3, uint64(m.Platform))
	return b
}

func (m *PlayerGetTokenCsReq) UnmarshalWire(b []byte) error {
	*m = PlayerGetTokenCsReq{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.UID, err = f.uint32()
		case 2:
			m.Token, err = f.string()
		case 3:
			m.Platform, err = f.uint32()
		}
		return err
	})
}

type PlayerGetTokenScRsp struct {
	Retcode Retcode
	UID     uint32
	Msg     string
}

func (m *PlayerGetTokenScRsp) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Retcode))
	b = appendUint(b, 2, uint64(m.UID))
	b = appendString(b, 3, m.Msg)
	return b
}

func (m *PlayerGetTokenScRsp) UnmarshalWire(b []byte) error {
	*m = PlayerGetTokenScRsp{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		case 2:
			m.UID, err = f.uint32()
		case 3:
			m.Msg, err = f.string()
		}
		return err
	})
}

type PlayerLoginCsReq struct {
	LoginRandom   uint64
	ClientVersion string
}

func (m *PlayerLoginCsReq) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, m.LoginRandom)
	b = appendString(b, 2, m.ClientVersion)
	return b
}

func (m *PlayerLoginCsReq) UnmarshalWire(b []byte) error {
	*m = PlayerLoginCsReq{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.LoginRandom, err = f.uint64()
		case 2:
			m.ClientVersion, err = f.string()
		}
		return err
	})
}

type PlayerLoginScRsp struct {
	Retcode           Retcode
	BasicInfo         *PlayerBasicInfo
	ServerTimestampMs uint64
	LoginRandom       uint64
}

func (m *PlayerLoginScRsp) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Retcode))
	if m.BasicInfo != nil {
		b = appendMessage(b, 2, m.BasicInfo)
	}
	b = appendUint(b, 3, m.ServerTimestampMs)
	b = appendUint(b, 4, m.LoginRandom)
	return b
}

func (m *PlayerLoginScRsp) UnmarshalWire(b []byte) error {
	*m = PlayerLoginScRsp{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		case 2:
			m.BasicInfo = &PlayerBasicInfo{}
			err = f.message(m.BasicInfo)
		case 3:
			m.ServerTimestampMs, err = f.uint64()
		case 4:
			m.LoginRandom, err = f.uint64()
		}
		return err
	})
}

type PlayerHeartBeatCsReq struct {
	ClientTimeMs uint64
}

func (m *PlayerHeartBeatCsReq) AppendWire(b []byte) []byte {
	return appendUint(b, 1, m.ClientTimeMs)
}

func (m *PlayerHeartBeatCsReq) UnmarshalWire(b []byte) error {
	*m = PlayerHeartBeatCsReq{}
	return walkFields(b, func(f field) (err error) {
		if f.num == 1 {
			m.ClientTimeMs, err = f.uint64()
		}
		return err
	})
}

type PlayerHeartBeatScRsp struct {
	Retcode      Retcode
	ClientTimeMs uint64
	ServerTimeMs uint64
}

func (m *PlayerHeartBeatScRsp) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Retcode))
	b = appendUint(b, 2, m.ClientTimeMs)
	b = appendUint(b, 3, m.ServerTimeMs)
	return b
}

func (m *PlayerHeartBeatScRsp) UnmarshalWire(b []byte) error {
	*m = PlayerHeartBeatScRsp{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		case 2:
			m.ClientTimeMs, err = f.uint64()
		case 3:
			m.ServerTimeMs, err = f.uint64()
		}
		return err
	})
}

type PlayerKickOutScNotify struct {
	KickType KickType
}

func (m *PlayerKickOutScNotify) AppendWire(b []byte) []byte {
	return appendUint(b, 1, uint64(m.KickType))
}

func (m *PlayerKickOutScNotify) UnmarshalWire(b []byte) error {
	*m = PlayerKickOutScNotify{}
	return walkFields(b, func(f field) (err error) {
		if f.num == 1 {
			var v uint32
			v, err = f.uint32()
			m.KickType = KickType(v)
		}
		return err
	})
}

type GetCurLineupDataCsReq struct{}

func (m *GetCurLineupDataCsReq) AppendWire(b []byte) []byte { return b }

func (m *GetCurLineupDataCsReq) UnmarshalWire(b []byte) error {
	return walkFields(b, func(field) error { return nil })
}

type GetCurLineupDataScRsp struct {
	Retcode Retcode
	Lineup  *LineupInfo
}

func (m *GetCurLineupDataScRsp) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Retcode))
	if m.Lineup != nil {
		b = appendMessage(b, 2, m.Lineup)
	}
	return b
}

func (m *GetCurLineupDataScRsp) UnmarshalWire(b []byte) error {
	*m = GetCurLineupDataScRsp{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		case 2:
			m.Lineup = &LineupInfo{}
			err = f.message(m.Lineup)
		}
		return err
	})
}

type GetCurSceneInfoCsReq struct{}

func (m *GetCurSceneInfoCsReq) AppendWire(b []byte) []byte { return b }

func (m *GetCurSceneInfoCsReq) UnmarshalWire(b []byte) error {
	return walkFields(b, func(field) error { return nil })
}

type GetCurSceneInfoScRsp struct {
	Retcode Retcode
	Scene   *SceneInfo
}

func (m *GetCurSceneInfoScRsp) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Retcode))
	if m.Scene != nil {
		b = appendMessage(b, 2, m.Scene)
	}
	return b
}

func (m *GetCurSceneInfoScRsp) UnmarshalWire(b []byte) error {
	*m = GetCurSceneInfoScRsp{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		case 2:
			m.Scene = &SceneInfo{}
			err = f.message(m.Scene)
		}
		return err
	})
}

type EnterSceneCsReq struct {
	EntryID    uint32
	TeleportID uint32
}

func (m *EnterSceneCsReq) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.EntryID))
	b = appendUint(b, 2, uint64(m.TeleportID))
	return b
}

func (m *EnterSceneCsReq) UnmarshalWire(b []byte) error {
	*m = EnterSceneCsReq{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.EntryID, err = f.uint32()
		case 2:
			m.TeleportID, err = f.uint32()
		}
		return err
	})
}

type EnterSceneScRsp struct {
	Retcode Retcode
}

func (m *EnterSceneScRsp) AppendWire(b []byte) []byte {
	return appendUint(b, 1, uint64(m.Retcode))
}

func (m *EnterSceneScRsp) UnmarshalWire(b []byte) error {
	*m = EnterSceneScRsp{}
	return walkFields(b, func(f field) (err error) {
		if f.num == 1 {
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		}
		return err
	})
}

// EnterSceneByServerScNotify pushes the new scene and lineup after a
// successful EnterSceneScRsp.
type EnterSceneByServerScNotify struct {
	Reason EnterSceneReason
	Lineup *LineupInfo
	Scene  *SceneInfo
}

func (m *EnterSceneByServerScNotify) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Reason))
	if m.Lineup != nil {
		b = appendMessage(b, 2, m.Lineup)
	}
	if m.Scene != nil {
		b = appendMessage(b, 3, m.Scene)
	}
	return b
}

func (m *EnterSceneByServerScNotify) UnmarshalWire(b []byte) error {
	*m = EnterSceneByServerScNotify{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.Reason = EnterSceneReason(v)
		case 2:
			m.Lineup = &LineupInfo{}
			err = f.message(m.Lineup)
		case 3:
			m.Scene = &SceneInfo{}
			err = f.message(m.Scene)
		}
		return err
	})
}

type LeaveSceneCsReq struct{}

func (m *LeaveSceneCsReq) AppendWire(b []byte) []byte { return b }

func (m *LeaveSceneCsReq) UnmarshalWire(b []byte) error {
	return walkFields(b, func(field) error { return nil })
}

type LeaveSceneScRsp struct {
	Retcode Retcode
}

func (m *LeaveSceneScRsp) AppendWire(b []byte) []byte {
	return appendUint(b, 1, uint64(m.Retcode))
}

func (m *LeaveSceneScRsp) UnmarshalWire(b []byte) error {
	*m = LeaveSceneScRsp{}
	return walkFields(b, func(f field) (err error) {
		if f.num == 1 {
			var v uint32
			v, err = f.uint32()
			m.Retcode = Retcode(v)
		}
		return err
	})
}
