package network

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/actor/messages"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

// WSServer is the WebSocket gateway. Every binary message carries exactly
// one frame in the TCP framing, so both transports share one codec.
type WSServer struct {
	actorSystem *actor.ActorSystem
	props       *actor.Props
	queueSize   int
	upgrader    websocket.Upgrader
	wg          sync.WaitGroup
	shutdown    chan struct{}
	stopOnce    sync.Once
	log         *zap.Logger
}

// NewWSServer creates the gateway. allowedOrigins lists the browser origins
// that may open a session; "*" allows any origin and an empty list allows
// only same-origin pages. Requests without an Origin header are not from a
// browser and are always accepted.
func NewWSServer(system *actor.ActorSystem, props *actor.Props, queueSize int, allowedOrigins []string) *WSServer {
	return &WSServer{
		actorSystem: system,
		props:       props,
		queueSize:   queueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		shutdown: make(chan struct{}),
		log:      utils.Logger().Named("ws"),
	}
}

// originChecker returns nil for an empty list, which makes the upgrader
// fall back to its same-origin check.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	anyOrigin := false
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			anyOrigin = true
		}
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || anyOrigin {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	metrics.Connections.WithLabelValues("ws").Inc()

	out := session.NewQueue(s.queueSize)
	pid := s.actorSystem.Root.Spawn(s.props)
	s.actorSystem.Root.Send(pid, &messages.ClientConnected{
		Outbound:   out,
		RemoteAddr: r.RemoteAddr,
		Transport:  "ws",
	})

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		writeLoop(out, s.shutdown, ws.Close, func(frame []byte) error {
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			return ws.WriteMessage(websocket.BinaryMessage, frame)
		})
	}()
	go func() {
		defer s.wg.Done()
		s.readPump(ws, pid, out)
	}()
}

func (s *WSServer) readPump(ws *websocket.Conn, pid *actor.PID, out *session.Queue) {
	ws.SetReadLimit(protocol.LengthPrefixSize + protocol.MaxMessageSize)
	for {
		kind, payload, err := ws.ReadMessage()
		if err != nil {
			s.actorSystem.Root.Send(pid, &messages.ClientDisconnected{Reason: readErrorReason(err)})
			out.Close()
			awaitSession(s.actorSystem, pid, s.log)
			return
		}
		if kind != websocket.BinaryMessage {
			s.log.Debug("ignoring non-binary message", zap.Stringer("remote", ws.RemoteAddr()))
			continue
		}
		pkt, err := protocol.DecodeFrame(payload)
		if err != nil {
			s.log.Warn("discarding malformed frame", zap.Stringer("remote", ws.RemoteAddr()), zap.Error(err))
			continue
		}
		s.actorSystem.Root.Send(pid, &messages.ClientPacket{CmdID: uint16(pkt.CmdID), Body: pkt.Body})
	}
}

// Stop closes every open connection and waits for their goroutines.
func (s *WSServer) Stop() {
	s.stopOnce.Do(func() { close(s.shutdown) })
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.log.Warn("shutdown timed out waiting for connections")
	}
}
