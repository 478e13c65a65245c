package scene

import "errors"

var (
	// ErrUnknownEntrance means the requested entry id has no static record.
	ErrUnknownEntrance = errors.New("unknown entrance")
	// ErrInternalInconsistency means a built scene broke one of its own
	// invariants. The request fails and nothing is committed.
	ErrInternalInconsistency = errors.New("internal inconsistency")
	// ErrSessionClosed means the machine was disconnected.
	ErrSessionClosed = errors.New("scene machine disconnected")
)
