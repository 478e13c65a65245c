package model

import "time"

// Player is the persisted profile of one account.
type Player struct {
	UID         uint32    `json:"uid"`
	Nickname    string    `json:"nickname"`
	Level       uint32    `json:"level"`
	Exp         uint32    `json:"exp"`
	Stamina     uint32    `json:"stamina"`
	Lineup      Lineup    `json:"lineup"`
	LastEntryID uint32    `json:"lastEntryId"` // Entry the player was in when the session ended
	CreatedAt   time.Time `json:"createdAt"`
	LastLogin   time.Time `json:"lastLogin"`
}

// Lineup is the ordered list of deployed characters.
type Lineup struct {
	Index      uint32         `json:"index"`
	Name       string         `json:"name"`
	LeaderSlot uint32         `json:"leaderSlot"`
	Avatars    []LineupAvatar `json:"avatars"`
}

// LineupAvatar is one occupied lineup slot. Hp is per-mille of max hp.
type LineupAvatar struct {
	AvatarID uint32 `json:"avatarId"`
	Slot     uint32 `json:"slot"`
	Hp       uint32 `json:"hp"`
}

// FullHp is the per-mille hp of an unhurt avatar.
const FullHp = 10000

// MaxLineupSize is the number of slots in one lineup.
const MaxLineupSize = 4

// Leader returns the avatar in the leader slot.
func (l Lineup) Leader() (LineupAvatar, bool) {
	for _, a := range l.Avatars {
		if a.Slot == l.LeaderSlot {
			return a, true
		}
	}
	return LineupAvatar{}, false
}

// Clone returns a copy that shares no slices with l.
func (l Lineup) Clone() Lineup {
	out := l
	out.Avatars = append([]LineupAvatar(nil), l.Avatars...)
	return out
}

// Clone returns a copy that shares no slices with p.
func (p Player) Clone() Player {
	out := p
	out.Lineup = p.Lineup.Clone()
	return out
}

// NewPlayer builds the profile of a first-time player with the given
// avatars deployed in order.
func NewPlayer(uid uint32, nickname string, avatarIDs []uint32, now time.Time) Player {
	lineup := Lineup{Index: 0, Name: "Team 1", LeaderSlot: 0}
	for n, id := range avatarIDs {
		if n == MaxLineupSize {
			break
		}
		lineup.Avatars = append(lineup.Avatars, LineupAvatar{AvatarID: id, Slot: uint32(n), Hp: FullHp})
	}
	return Player{
		UID:       uid,
		Nickname:  nickname,
		Level:     1,
		Stamina:   240,
		Lineup:    lineup,
		CreatedAt: now,
		LastLogin: now,
	}
}

// Session is the registry view of an online player connection.
type Session struct {
	ID          string    `json:"id"` // uuid assigned on connect
	UID         uint32    `json:"uid"`
	RemoteAddr  string    `json:"remoteAddr"`
	ConnectedAt time.Time `json:"connectedAt"`
}
