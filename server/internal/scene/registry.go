package scene

import (
	"fmt"
	"sort"

	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
)

// AvatarGroupID is the group that holds the owning player's actors.
const AvatarGroupID = 0

// GroupStateActive marks a group the client should load.
const GroupStateActive = 1

// EntityKind selects which variant an entity carries.
type EntityKind int

const (
	EntityActor EntityKind = iota + 1
	EntityProp
)

// Entity is one placed object of a scene instance. Pos and Target are the
// motion vectors sent to the client; a stationary entity has Target == Pos.
// Facing is the design-time rotation and is kept server side.
type Entity struct {
	Kind     EntityKind
	GroupID  uint32
	InstID   uint32
	EntityID uint32
	Pos      protocol.Vector
	Target   protocol.Vector
	Facing   protocol.Vector
	Actor    protocol.SceneActorInfo
	Prop     protocol.ScenePropInfo
}

// NewActorEntity places a stationary character owned by uid.
func NewActorEntity(groupID, instID, entityID uint32, pos, facing protocol.Vector, actor protocol.SceneActorInfo) Entity {
	return Entity{
		Kind:     EntityActor,
		GroupID:  groupID,
		InstID:   instID,
		EntityID: entityID,
		Pos:      pos,
		Target:   pos,
		Facing:   facing,
		Actor:    actor,
	}
}

// NewPropEntity places a stationary prop.
func NewPropEntity(groupID, instID, entityID uint32, pos, facing protocol.Vector, prop protocol.ScenePropInfo) Entity {
	return Entity{
		Kind:     EntityProp,
		GroupID:  groupID,
		InstID:   instID,
		EntityID: entityID,
		Pos:      pos,
		Target:   pos,
		Facing:   facing,
		Prop:     prop,
	}
}

// Info converts the entity to its wire form; only the field matching Kind
// is populated.
func (e Entity) Info() *protocol.SceneEntityInfo {
	info := &protocol.SceneEntityInfo{
		GroupID:  e.GroupID,
		InstID:   e.InstID,
		EntityID: e.EntityID,
		Motion:   protocol.NewMotionInfo(e.Pos, e.Target),
	}
	switch e.Kind {
	case EntityActor:
		actor := e.Actor
		info.Actor = &actor
	case EntityProp:
		prop := e.Prop
		info.Prop = &prop
	}
	return info
}

// Group is a set of entities sharing a group id and activation state.
type Group struct {
	ID       uint32
	State    uint32
	Entities []Entity
}

// Ref identifies a scene by plane, floor and entry.
type Ref struct {
	PlaneID uint32
	FloorID uint32
	EntryID uint32
}

// Owner is the player a scene instance is laid out for.
type Owner struct {
	UID    uint32
	Lineup model.Lineup
}

// Instance is the authoritative placement state of one entered scene.
// Entity ids are allocated once when the instance is built and stay stable
// for its lifetime.
type Instance struct {
	Ref      Ref
	GameMode protocol.GameModeType
	groups   []Group
	nextID   uint32
}

// GameModeFor maps an entrance class to the client game mode. Entrances
// with no or an unknown class load as mazes.
func GameModeFor(t data.EntranceType) protocol.GameModeType {
	switch t {
	case data.EntranceTypeTown:
		return protocol.GameModeTypeTown
	case data.EntranceTypeChallenge:
		return protocol.GameModeTypeChallenge
	case data.EntranceTypeRogue:
		return protocol.GameModeTypeRogue
	default:
		return protocol.GameModeTypeMaze
	}
}

// Registry lays out scene instances from the static data index.
type Registry struct {
	index *data.Index
}

func NewRegistry(index *data.Index) *Registry {
	return &Registry{index: index}
}

// Build lays out the scene behind entrance for owner. The owner's leader is
// placed at the floor start anchor in AvatarGroupID; level-design groups
// follow in ascending group id. A floor with no layout yields only the
// avatar group, or no groups at all when the lineup is empty.
func (r *Registry) Build(entrance data.EntranceConfig, owner Owner) (*Instance, error) {
	inst := &Instance{
		Ref: Ref{
			PlaneID: entrance.PlaneID,
			FloorID: entrance.FloorID,
			EntryID: entrance.ID,
		},
		GameMode: GameModeFor(entrance.EntranceType),
	}

	floor, _ := r.index.FindFloorConfig(entrance.FloorID)

	if leader, ok := owner.Lineup.Leader(); ok {
		pos := vector(floor.StartAnchor.Pos)
		facing := vector(floor.StartAnchor.Rot)
		actor := protocol.SceneActorInfo{
			AvatarType:   protocol.AvatarTypeFormal,
			BaseAvatarID: leader.AvatarID,
			MapLayer:     floor.StartAnchor.MapLayer,
			UID:          owner.UID,
		}
		inst.groups = append(inst.groups, Group{
			ID:       AvatarGroupID,
			State:    GroupStateActive,
			Entities: []Entity{NewActorEntity(AvatarGroupID, 0, inst.allocID(), pos, facing, actor)},
		})
	}

	designGroups := append([]data.GroupConfig(nil), floor.Groups...)
	sort.SliceStable(designGroups, func(i, j int) bool { return designGroups[i].GroupID < designGroups[j].GroupID })
	for _, g := range designGroups {
		group := Group{ID: g.GroupID, State: g.State}
		for _, p := range g.Props {
			prop := protocol.ScenePropInfo{PropID: p.PropID, PropState: p.PropState}
			group.Entities = append(group.Entities,
				NewPropEntity(g.GroupID, p.InstID, inst.allocID(), vector(p.Pos), vector(p.Rot), prop))
		}
		inst.groups = append(inst.groups, group)
	}

	if err := inst.validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (i *Instance) allocID() uint32 {
	i.nextID++
	return i.nextID
}

func (i *Instance) validate() error {
	groups := make(map[uint32]struct{}, len(i.groups))
	entities := make(map[uint32]struct{})
	for _, g := range i.groups {
		if _, dup := groups[g.ID]; dup {
			return fmt.Errorf("entry %d: duplicate group id %d: %w", i.Ref.EntryID, g.ID, ErrInternalInconsistency)
		}
		groups[g.ID] = struct{}{}
		for _, e := range g.Entities {
			if _, dup := entities[e.EntityID]; dup {
				return fmt.Errorf("entry %d: duplicate entity id %d: %w", i.Ref.EntryID, e.EntityID, ErrInternalInconsistency)
			}
			entities[e.EntityID] = struct{}{}
			if e.GroupID != g.ID {
				return fmt.Errorf("entry %d: entity %d filed under group %d but names %d: %w",
					i.Ref.EntryID, e.EntityID, g.ID, e.GroupID, ErrInternalInconsistency)
			}
			if e.Kind != EntityActor && e.Kind != EntityProp {
				return fmt.Errorf("entry %d: entity %d has no variant: %w", i.Ref.EntryID, e.EntityID, ErrInternalInconsistency)
			}
			if e.Pos != e.Target {
				return fmt.Errorf("entry %d: stationary entity %d moves from %v to %v: %w",
					i.Ref.EntryID, e.EntityID, e.Pos, e.Target, ErrInternalInconsistency)
			}
		}
	}
	return nil
}

// Groups returns a copy of the instance's groups.
func (i *Instance) Groups() []Group {
	out := make([]Group, len(i.groups))
	for n, g := range i.groups {
		out[n] = g
		out[n].Entities = append([]Entity(nil), g.Entities...)
	}
	return out
}

// Snapshot builds the wire group list. Every call returns fresh values.
func (i *Instance) Snapshot() []*protocol.EntityGroupInfo {
	out := make([]*protocol.EntityGroupInfo, 0, len(i.groups))
	for _, g := range i.groups {
		info := &protocol.EntityGroupInfo{
			State:      g.State,
			GroupID:    g.ID,
			EntityList: make([]*protocol.SceneEntityInfo, 0, len(g.Entities)),
		}
		for _, e := range g.Entities {
			info.EntityList = append(info.EntityList, e.Info())
		}
		out = append(out, info)
	}
	return out
}

// SceneInfo builds the full wire snapshot of the instance.
func (i *Instance) SceneInfo() *protocol.SceneInfo {
	return protocol.NewSceneInfo(i.Ref.PlaneID, i.Ref.FloorID, i.Ref.EntryID, i.GameMode, i.Snapshot())
}

func vector(p data.Position) protocol.Vector {
	return protocol.Vector{X: p.X, Y: p.Y, Z: p.Z}
}
