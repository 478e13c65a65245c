package scene

import (
	"fmt"

	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
)

// State is the scene lifecycle of one session.
type State int

const (
	StateDisconnected State = iota
	StateNoScene
	StateInScene
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateNoScene:
		return "NoScene"
	case StateInScene:
		return "InScene"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine tracks which scene a session is in. It is owned by the session's
// actor and is not safe for concurrent use.
type Machine struct {
	index    *data.Index
	registry *Registry
	state    State
	current  *Instance
}

// NewMachine returns a machine for a freshly established session.
func NewMachine(index *data.Index, registry *Registry) *Machine {
	return &Machine{
		index:    index,
		registry: registry,
		state:    StateNoScene,
	}
}

func (m *Machine) State() State { return m.state }

// Ref returns the current scene reference.
func (m *Machine) Ref() (Ref, bool) {
	if m.state != StateInScene {
		return Ref{}, false
	}
	return m.current.Ref, true
}

// Instance returns the current scene instance, or nil outside a scene.
func (m *Machine) Instance() *Instance {
	if m.state != StateInScene {
		return nil
	}
	return m.current
}

// Enter moves the session into the scene behind entryID. On any error the
// previous state is kept as it was.
func (m *Machine) Enter(entryID uint32, owner Owner) (*Instance, error) {
	if m.state == StateDisconnected {
		return nil, ErrSessionClosed
	}
	entrance, ok := m.index.FindEntranceConfig(entryID)
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", entryID, ErrUnknownEntrance)
	}
	inst, err := m.registry.Build(entrance, owner)
	if err != nil {
		return nil, err
	}
	m.current = inst
	m.state = StateInScene
	return inst, nil
}

// Leave drops the current scene. It reports whether a scene was left.
func (m *Machine) Leave() bool {
	if m.state != StateInScene {
		return false
	}
	m.current = nil
	m.state = StateNoScene
	return true
}

// Disconnect is terminal: no scene can be entered afterwards.
func (m *Machine) Disconnect() {
	m.current = nil
	m.state = StateDisconnected
}

// Current returns the SceneInfo of the current scene. Outside a scene it
// returns an empty snapshot: zero ids, GameModeTypeNone, no groups.
func (m *Machine) Current() *protocol.SceneInfo {
	if m.state != StateInScene {
		return protocol.NewSceneInfo(0, 0, 0, protocol.GameModeTypeNone, nil)
	}
	return m.current.SceneInfo()
}
