package network

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/actor/messages"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

const (
	// writeTimeout bounds a single frame write to a client.
	writeTimeout = 10 * time.Second
	// shutdownTimeout bounds how long Stop waits for connection goroutines.
	shutdownTimeout = 10 * time.Second
)

// TCPServer accepts client connections and bridges each one to its own
// PlayerSessionActor: a read loop forwards frames to the actor and a write
// loop drains the session's outbound queue to the socket.
type TCPServer struct {
	listener    net.Listener
	addr        string
	actorSystem *actor.ActorSystem
	props       *actor.Props
	queueSize   int
	wg          sync.WaitGroup
	shutdown    chan struct{}
	stopOnce    sync.Once
	log         *zap.Logger
}

// NewTCPServer creates a new TCPServer. props spawns one session actor per
// accepted connection.
func NewTCPServer(host string, port int, system *actor.ActorSystem, props *actor.Props, queueSize int) *TCPServer {
	return &TCPServer{
		addr:        net.JoinHostPort(host, strconv.Itoa(port)),
		actorSystem: system,
		props:       props,
		queueSize:   queueSize,
		shutdown:    make(chan struct{}),
		log:         utils.Logger().Named("tcp"),
	}
}

// Start begins listening for TCP connections.
func (s *TCPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("listening", zap.Stringer("addr", ln.Addr()))

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Addr is the bound listen address, valid after Start.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *TCPServer) acceptConnections() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		metrics.Connections.WithLabelValues("tcp").Inc()
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection runs the read loop of one client connection. It returns
// once the session actor has stopped, so Stop also waits for session
// cleanup.
func (s *TCPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	out := session.NewQueue(s.queueSize)
	pid := s.actorSystem.Root.Spawn(s.props)
	s.actorSystem.Root.Send(pid, &messages.ClientConnected{
		Outbound:   out,
		RemoteAddr: conn.RemoteAddr().String(),
		Transport:  "tcp",
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		writeLoop(out, s.shutdown, conn.Close, func(frame []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, err := conn.Write(frame)
			return err
		})
	}()

	for {
		pkt, err := protocol.ReadFrame(conn)
		if err != nil {
			s.actorSystem.Root.Send(pid, &messages.ClientDisconnected{Reason: readErrorReason(err)})
			out.Close()
			awaitSession(s.actorSystem, pid, s.log)
			return
		}
		s.actorSystem.Root.Send(pid, &messages.ClientPacket{CmdID: uint16(pkt.CmdID), Body: pkt.Body})
	}
}

// writeLoop drains out through write until the queue closes, the server
// shuts down or a write fails. closeConn runs on exit so the read loop
// unblocks.
func writeLoop(out *session.Queue, shutdown <-chan struct{}, closeConn func() error, write func([]byte) error) {
	defer closeConn()
	for {
		select {
		case frame := <-out.Frames():
			if err := write(frame); err != nil {
				utils.Logger().Debug("write failed", zap.Error(err))
				out.Close()
				return
			}
		case <-out.Done():
			for _, frame := range out.Drain() {
				if err := write(frame); err != nil {
					return
				}
			}
			return
		case <-shutdown:
			out.Close()
			return
		}
	}
}

// awaitSession poisons the session actor behind a finished connection and
// waits until it has stopped.
func awaitSession(system *actor.ActorSystem, pid *actor.PID, log *zap.Logger) {
	if err := system.Root.PoisonFuture(pid).Wait(); err != nil {
		log.Warn("session actor did not stop in time", zap.String("pid", pid.Id), zap.Error(err))
	}
}

func readErrorReason(err error) string {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		return "EOF"
	case errors.Is(err, net.ErrClosed):
		return "closed"
	case errors.As(err, &ne) && ne.Timeout():
		return "Timeout"
	default:
		return err.Error()
	}
}

// Stop closes the listener and every connection, then waits for their
// session actors to stop. Calling it again is a no-op.
func (s *TCPServer) Stop() {
	first := false
	s.stopOnce.Do(func() {
		first = true
		close(s.shutdown)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				s.log.Warn("closing listener failed", zap.Error(err))
			}
		}
	})
	if !first {
		return
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("stopped")
	case <-time.After(shutdownTimeout):
		s.log.Warn("shutdown timed out waiting for connections")
	}
}
