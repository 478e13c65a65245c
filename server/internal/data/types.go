package data

// EntranceType is the design classification of a map entrance.
type EntranceType string

const (
	EntranceTypeTown      EntranceType = "Town"
	EntranceTypeMaze      EntranceType = "Maze"
	EntranceTypeChallenge EntranceType = "Challenge"
	EntranceTypeRogue     EntranceType = "Rogue"
)

// EntranceConfig maps an entry id to the plane and floor it loads.
type EntranceConfig struct {
	ID           uint32
	PlaneID      uint32
	FloorID      uint32
	EntranceType EntranceType
}

// Position is a design-time coordinate in fixed-point units.
type Position struct {
	X int32
	Y int32
	Z int32
}

// Anchor is where players appear when entering a floor.
type Anchor struct {
	Pos      Position
	Rot      Position
	MapLayer uint32
}

// PropPlacement is one prop placed by level design.
type PropPlacement struct {
	InstID    uint32
	PropID    uint32
	PropState uint32
	Pos       Position
	Rot       Position
}

// GroupConfig is a level-design group of props sharing an activation state.
type GroupConfig struct {
	GroupID uint32
	State   uint32
	Props   []PropPlacement
}

// FloorConfig holds the static layout of one floor.
type FloorConfig struct {
	FloorID     uint32
	StartAnchor Anchor
	Groups      []GroupConfig
}

// AvatarConfig describes a playable character.
type AvatarConfig struct {
	AvatarID uint32
	Name     string
	Rarity   uint32
}
