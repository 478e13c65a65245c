package messages

import "github.com/asynkron/protoactor-go/actor"

// PlayerEnteredWorld registers an authenticated session with the
// WorldManagerActor.
type PlayerEnteredWorld struct {
	UID        uint32
	SessionID  string
	RemoteAddr string
	PlayerPID  *actor.PID
}

// PlayerLeftWorld unregisters a session. It is ignored unless PlayerPID is
// the session currently registered for UID.
type PlayerLeftWorld struct {
	UID       uint32
	PlayerPID *actor.PID
}

// OnlineCountRequest asks the WorldManagerActor for the number of
// registered sessions.
type OnlineCountRequest struct{}

type OnlineCountResponse struct {
	Count int
}

// SessionLookupRequest asks which session is registered for UID.
type SessionLookupRequest struct {
	UID uint32
}

type SessionLookupResponse struct {
	Found     bool
	SessionID string
	PlayerPID *actor.PID
}
