package data

import (
	"fmt"
	"sort"
)

// Index is the read-only game-design table set. It is built once at startup
// and shared by every session; nothing mutates it after construction, so
// lookups need no locking.
type Index struct {
	entrances map[uint32]EntranceConfig
	floors    map[uint32]FloorConfig
	avatars   map[uint32]AvatarConfig
}

// NewIndex builds an index from records. Duplicate ids are rejected so the
// id -> record mapping stays a function.
func NewIndex(entrances []EntranceConfig, floors []FloorConfig, avatars []AvatarConfig) (*Index, error) {
	idx := &Index{
		entrances: make(map[uint32]EntranceConfig, len(entrances)),
		floors:    make(map[uint32]FloorConfig, len(floors)),
		avatars:   make(map[uint32]AvatarConfig, len(avatars)),
	}
	for _, e := range entrances {
		if _, dup := idx.entrances[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entrance config %d", e.ID)
		}
		idx.entrances[e.ID] = e
	}
	for _, f := range floors {
		if _, dup := idx.floors[f.FloorID]; dup {
			return nil, fmt.Errorf("duplicate floor config %d", f.FloorID)
		}
		idx.floors[f.FloorID] = cloneFloor(f)
	}
	for _, a := range avatars {
		if _, dup := idx.avatars[a.AvatarID]; dup {
			return nil, fmt.Errorf("duplicate avatar config %d", a.AvatarID)
		}
		idx.avatars[a.AvatarID] = a
	}
	return idx, nil
}

// FindEntranceConfig looks up an entrance by entry id.
func (i *Index) FindEntranceConfig(id uint32) (EntranceConfig, bool) {
	e, ok := i.entrances[id]
	return e, ok
}

// FindFloorConfig returns a copy of the floor layout, so callers can't reach
// the shared slices.
func (i *Index) FindFloorConfig(floorID uint32) (FloorConfig, bool) {
	f, ok := i.floors[floorID]
	if !ok {
		return FloorConfig{}, false
	}
	return cloneFloor(f), true
}

func (i *Index) FindAvatarConfig(id uint32) (AvatarConfig, bool) {
	a, ok := i.avatars[id]
	return a, ok
}

// Entrances lists every entrance ordered by id.
func (i *Index) Entrances() []EntranceConfig {
	out := make([]EntranceConfig, 0, len(i.entrances))
	for _, e := range i.entrances {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Counts reports table sizes for startup logging.
func (i *Index) Counts() (entrances, floors, avatars int) {
	return len(i.entrances), len(i.floors), len(i.avatars)
}

func cloneFloor(f FloorConfig) FloorConfig {
	out := f
	out.Groups = make([]GroupConfig, len(f.Groups))
	for n, g := range f.Groups {
		out.Groups[n] = g
		out.Groups[n].Props = append([]PropPlacement(nil), g.Props...)
	}
	return out
}
