package protocol

// GameModeType tells the client which ruleset drives the loaded scene.
type GameModeType uint32

const (
	GameModeTypeNone      GameModeType = 0
	GameModeTypeTown      GameModeType = 1
	GameModeTypeMaze      GameModeType = 2
	GameModeTypeChallenge GameModeType = 4
	GameModeTypeRogue     GameModeType = 5
)

// EnterSceneReason explains a server-initiated scene change.
type EnterSceneReason uint32

const (
	EnterSceneReasonNone EnterSceneReason = 0
)

// AvatarType classifies who controls an avatar.
type AvatarType uint32

const (
	AvatarTypeNone   AvatarType = 0
	AvatarTypeTrial  AvatarType = 1
	AvatarTypeLimit  AvatarType = 2
	AvatarTypeFormal AvatarType = 3
)

// KickType is the reason carried by PlayerKickOutScNotify.
type KickType uint32

const (
	KickTypeNone           KickType = 0
	KickTypeLoginElsewhere KickType = 1
	KickTypeServerClose    KickType = 2
)

// Vector is a position or facing in fixed-point units (1/1000 of a meter).
type Vector struct {
	X int32
	Y int32
	Z int32
}

// NewVector builds a vector from explicit components.
func NewVector(x, y, z int32) *Vector {
	return &Vector{X: x, Y: y, Z: z}
}

func (m *Vector) AppendWire(b []byte) []byte {
	b = appendInt32(b, 1, m.X)
	b = appendInt32(b, 2, m.Y)
	b = appendInt32(b, 3, m.Z)
	return b
}

func (m *Vector) UnmarshalWire(b []byte) error {
	*m = Vector{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.X, err = f.int32()
		case 2:
			m.Y, err = f.int32()
		case 3:
			m.Z, err = f.int32()
		}
		return err
	})
}

// MotionInfo carries the current position and the target/facing vector.
type MotionInfo struct {
	Pos *Vector
	Rot *Vector
}

// NewMotionInfo builds motion data with both vectors set.
func NewMotionInfo(pos, rot Vector) *MotionInfo {
	return &MotionInfo{Pos: NewVector(pos.X, pos.Y, pos.Z), Rot: NewVector(rot.X, rot.Y, rot.Z)}
}

// NewStationaryMotion builds motion data for an entity that is not moving:
// both vectors equal pos.
func NewStationaryMotion(pos Vector) *MotionInfo {
	return NewMotionInfo(pos, pos)
}

func (m *MotionInfo) AppendWire(b []byte) []byte {
	if m.Pos != nil {
		b = appendMessage(b, 1, m.Pos)
	}
	if m.Rot != nil {
		b = appendMessage(b, 2, m.Rot)
	}
	return b
}

func (m *MotionInfo) UnmarshalWire(b []byte) error {
	*m = MotionInfo{}
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			m.Pos = &Vector{}
			return f.message(m.Pos)
		case 2:
			m.Rot = &Vector{}
			return f.message(m.Rot)
		}
		return nil
	})
}

// SceneActorInfo describes a character placed in the scene.
type SceneActorInfo struct {
	AvatarType   AvatarType
	BaseAvatarID uint32
	MapLayer     uint32
	UID          uint32
}

func (m *SceneActorInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.AvatarType))
	b = appendUint(b, 2, uint64(m.BaseAvatarID))
	b = appendUint(b, 3, uint64(m.MapLayer))
	b = appendUint(b, 4, uint64(m.UID))
	return b
}

func (m *SceneActorInfo) UnmarshalWire(b []byte) error {
	*m = SceneActorInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			var v uint32
			v, err = f.uint32()
			m.AvatarType = AvatarType(v)
		case 2:
			m.BaseAvatarID, err = f.uint32()
		case 3:
			m.MapLayer, err = f.uint32()
		case 4:
			m.UID, err = f.uint32()
		}
		return err
	})
}

// ScenePropInfo describes an interactable prop.
type ScenePropInfo struct {
	PropID    uint32
	PropState uint32
}

func (m *ScenePropInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.PropID))
	b = appendUint(b, 2, uint64(m.PropState))
	return b
}

func (m *ScenePropInfo) UnmarshalWire(b []byte) error {
	*m = ScenePropInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.PropID, err = f.uint32()
		case 2:
			m.PropState, err = f.uint32()
		}
		return err
	})
}

// SceneEntityInfo is one placed object. Actor and Prop form a oneof: at most
// one of them is set, and decoding keeps only the last one seen.
type SceneEntityInfo struct {
	GroupID  uint32
	InstID   uint32
	EntityID uint32
	Motion   *MotionInfo
	Actor    *SceneActorInfo
	Prop     *ScenePropInfo
}

func (m *SceneEntityInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.GroupID))
	b = appendUint(b, 2, uint64(m.InstID))
	b = appendUint(b, 3, uint64(m.EntityID))
	if m.Motion != nil {
		b = appendMessage(b, 4, m.Motion)
	}
	switch {
	case m.Actor != nil:
		b = appendMessage(b, 5, m.Actor)
	case m.Prop != nil:
		b = appendMessage(b, 6, m.Prop)
	}
	return b
}

func (m *SceneEntityInfo) UnmarshalWire(b []byte) error {
	*m = SceneEntityInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.GroupID, err = f.uint32()
		case 2:
			m.InstID, err = f.uint32()
		case 3:
			m.EntityID, err = f.uint32()
		case 4:
			m.Motion = &MotionInfo{}
			err = f.message(m.Motion)
		case 5:
			m.Prop = nil
			m.Actor = &SceneActorInfo{}
			err = f.message(m.Actor)
		case 6:
			m.Actor = nil
			m.Prop = &ScenePropInfo{}
			err = f.message(m.Prop)
		}
		return err
	})
}

// EntityGroupInfo groups entities sharing a group id and activation state.
type EntityGroupInfo struct {
	State      uint32
	GroupID    uint32
	EntityList []*SceneEntityInfo
}

func (m *EntityGroupInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.State))
	b = appendUint(b, 2, uint64(m.GroupID))
	for _, e := range m.EntityList {
		b = appendMessage(b, 3, e)
	}
	return b
}

func (m *EntityGroupInfo) UnmarshalWire(b []byte) error {
	*m = EntityGroupInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.State, err = f.uint32()
		case 2:
			m.GroupID, err = f.uint32()
		case 3:
			e := &SceneEntityInfo{}
			if err = f.message(e); err == nil {
				m.EntityList = append(m.EntityList, e)
			}
		}
		return err
	})
}

// SceneInfo describes the player's current location and what is placed there.
type SceneInfo struct {
	PlaneID         uint32
	FloorID         uint32
	EntryID         uint32
	GameModeType    GameModeType
	EntityGroupList []*EntityGroupInfo
}

// NewSceneInfo names every SceneInfo field. A nil group list is replaced by
// an empty one so callers never see a nil snapshot.
func NewSceneInfo(planeID, floorID, entryID uint32, mode GameModeType, groups []*EntityGroupInfo) *SceneInfo {
	if groups == nil {
		groups = []*EntityGroupInfo{}
	}
	return &SceneInfo{
		PlaneID:         planeID,
		FloorID:         floorID,
		EntryID:         entryID,
		GameModeType:    mode,
		EntityGroupList: groups,
	}
}

func (m *SceneInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.PlaneID))
	b = appendUint(b, 2, uint64(m.FloorID))
	b = appendUint(b, 3, uint64(m.EntryID))
	b = appendUint(b, 4, uint64(m.GameModeType))
	for _, g := range m.EntityGroupList {
		b = appendMessage(b, 5, g)
	}
	return b
}

func (m *SceneInfo) UnmarshalWire(b []byte) error {
	*m = SceneInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.PlaneID, err = f.uint32()
		case 2:
			m.FloorID, err = f.uint32()
		case 3:
			m.EntryID, err = f.uint32()
		case 4:
			var v uint32
			v, err = f.uint32()
			m.GameModeType = GameModeType(v)
		case 5:
			g := &EntityGroupInfo{}
			if err = f.message(g); err == nil {
				m.EntityGroupList = append(m.EntityGroupList, g)
			}
		}
		return err
	})
}

// LineupAvatar is one slot of a lineup.
type LineupAvatar struct {
	ID         uint32
	Slot       uint32
	AvatarType AvatarType
	Hp         uint32
}

func (m *LineupAvatar) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.ID))
	b = appendUint(b, 2, uint64(m.Slot))
	b = appendUint(b, 3, uint64(m.AvatarType))
	b = appendUint(b, 4, uint64(m.Hp))
	return b
}

func (m *LineupAvatar) UnmarshalWire(b []byte) error {
	*m = LineupAvatar{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.ID, err = f.uint32()
		case 2:
			m.Slot, err = f.uint32()
		case 3:
			var v uint32
			v, err = f.uint32()
			m.AvatarType = AvatarType(v)
		case 4:
			m.Hp, err = f.uint32()
		}
		return err
	})
}

// LineupInfo is the ordered set of deployed characters.
type LineupInfo struct {
	Index      uint32
	Name       string
	LeaderSlot uint32
	Mp         uint32
	MaxMp      uint32
	AvatarList []*LineupAvatar
}

func (m *LineupInfo) AppendWire(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Index))
	b = appendString(b, 2, m.Name)
	b = appendUint(b, 3, uint64(m.LeaderSlot))
	b = appendUint(b, 4, uint64(m.Mp))
	b = appendUint(b, 5, uint64(m.MaxMp))
	for _, a := range m.AvatarList {
		b = appendMessage(b, 6, a)
	}
	return b
}

func (m *LineupInfo) UnmarshalWire(b []byte) error {
	*m = LineupInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Index, err = f.uint32()
		case 2:
			m.Name, err = f.string()
		case 3:
			m.LeaderSlot, err = f.uint32()
		case 4:
			m.Mp, err = f.uint32()
		case 5:
			m.MaxMp, err = f.uint32()
		case 6:
			a := &LineupAvatar{}
			if err = f.message(a); err == nil {
				m.AvatarList = append(m.AvatarList, a)
			}
		}
		return err
	})
}

// PlayerBasicInfo is the profile summary returned at login.
type PlayerBasicInfo struct {
	Nickname string
	Level    uint32
	Exp      uint32
	Stamina  uint32
}

func (m *PlayerBasicInfo) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Nickname)
	b = appendUint(b, 2, uint64(m.Level))
	b = appendUint(b, 3, uint64(m.Exp))
	b = appendUint(b, 4, uint64(m.Stamina))
	return b
}

func (m *PlayerBasicInfo) UnmarshalWire(b []byte) error {
	*m = PlayerBasicInfo{}
	return walkFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Nickname, err = f.string()
		case 2:
			m.Level, err = f.uint32()
		case 3:
			m.Exp, err = f.uint32()
		case 4:
			m.Stamina, err = f.uint32()
		}
		return err
	})
}
