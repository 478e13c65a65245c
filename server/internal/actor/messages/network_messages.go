package messages

import "github.com/phuhao00/rpgserver/server/internal/session"

// ClientConnected is the first message a PlayerSessionActor receives. The
// transport drains Outbound to the socket.
type ClientConnected struct {
	Outbound   *session.Queue
	RemoteAddr string
	Transport  string // "tcp" or "ws"
}

// ClientPacket carries one decoded inbound frame.
type ClientPacket struct {
	CmdID uint16
	Body  []byte
}

// ClientDisconnected is sent when a client connection is lost or closed.
type ClientDisconnected struct {
	Reason string
}

// TerminateSession instructs a PlayerSessionActor to shut down. A non-zero
// Kick is sent to the client first.
type TerminateSession struct {
	Reason string
	Kick   uint32
}
