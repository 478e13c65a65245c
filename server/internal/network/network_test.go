package network

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/rpgserver/server/internal/actor/messages"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/session"
)

// echoProps answers every packet with a heartbeat response carrying the
// request's command id, and reports disconnects.
func echoProps(disconnected chan<- string) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		var out *session.Queue
		return actor.ReceiveFunc(func(ctx actor.Context) {
			switch msg := ctx.Message().(type) {
			case *messages.ClientConnected:
				out = msg.Outbound
			case *messages.ClientPacket:
				frame, _ := protocol.EncodeFrame(protocol.CmdPlayerHeartBeatScRsp,
					protocol.Marshal(&protocol.PlayerHeartBeatScRsp{ClientTimeMs: uint64(msg.CmdID)}))
				_ = out.Push(frame)
			case *messages.ClientDisconnected:
				select {
				case disconnected <- msg.Reason:
				default:
				}
			}
		})
	})
}

func heartBeatFrame(t *testing.T) []byte {
	t.Helper()
	frame, err := protocol.EncodeFrame(protocol.CmdPlayerHeartBeatCsReq,
		protocol.Marshal(&protocol.PlayerHeartBeatCsReq{ClientTimeMs: 1}))
	require.NoError(t, err)
	return frame
}

func assertEcho(t *testing.T, pkt protocol.Packet) {
	t.Helper()
	assert.Equal(t, protocol.CmdPlayerHeartBeatScRsp, pkt.CmdID)
	var rsp protocol.PlayerHeartBeatScRsp
	require.NoError(t, protocol.Unmarshal(pkt.Body, &rsp))
	assert.Equal(t, uint64(protocol.CmdPlayerHeartBeatCsReq), rsp.ClientTimeMs)
}

func TestTCPServerRoundTrip(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	disconnected := make(chan string, 1)

	srv := NewTCPServer("127.0.0.1", 0, system, echoProps(disconnected), 8)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)

	_, err = conn.Write(heartBeatFrame(t))
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	pkt, err := protocol.ReadFrame(conn)
	require.NoError(t, err)
	assertEcho(t, pkt)

	require.NoError(t, conn.Close())
	select {
	case reason := <-disconnected:
		assert.NotEmpty(t, reason)
	case <-time.After(2 * time.Second):
		t.Fatal("session actor not told about disconnect")
	}
}

func TestTCPServerDropsOversizedFrame(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	disconnected := make(chan string, 1)

	srv := NewTCPServer("127.0.0.1", 0, system, echoProps(disconnected), 8)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
	require.NoError(t, err)
	select {
	case reason := <-disconnected:
		assert.Contains(t, reason, "max message size")
	case <-time.After(2 * time.Second):
		t.Fatal("oversized frame did not end the connection")
	}
}

func TestWSServerRoundTrip(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	disconnected := make(chan string, 1)

	gw := NewWSServer(system, echoProps(disconnected), 8, nil)
	httpSrv := httptest.NewServer(gw)
	defer httpSrv.Close()
	defer gw.Stop()

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	// Text messages are ignored.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, heartBeatFrame(t)))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, payload, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	pkt, err := protocol.DecodeFrame(payload)
	require.NoError(t, err)
	assertEcho(t, pkt)

	require.NoError(t, ws.Close())
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("session actor not told about disconnect")
	}
}

// slowStopProps models a session actor whose cleanup takes a while.
func slowStopProps(cleaned *atomic.Bool) *actor.Props {
	return actor.PropsFromFunc(func(ctx actor.Context) {
		if _, ok := ctx.Message().(*actor.Stopping); ok {
			time.Sleep(200 * time.Millisecond)
			cleaned.Store(true)
		}
	})
}

func TestTCPServerStopWaitsForSessionCleanup(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	var cleaned atomic.Bool

	srv := NewTCPServer("127.0.0.1", 0, system, slowStopProps(&cleaned), 8)
	require.NoError(t, srv.Start())

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(heartBeatFrame(t))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	srv.Stop()
	assert.True(t, cleaned.Load())
}

func TestTCPServerStopTwice(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()

	srv := NewTCPServer("127.0.0.1", 0, system, echoProps(make(chan string, 1)), 8)
	require.NoError(t, srv.Start())
	srv.Stop()
	assert.NotPanics(t, srv.Stop)
}

func TestWSServerChecksOrigin(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()

	gw := NewWSServer(system, echoProps(make(chan string, 1)), 8, []string{"https://play.example.com"})
	httpSrv := httptest.NewServer(gw)
	defer httpSrv.Close()
	defer gw.Stop()
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")

	_, rsp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, rsp)
	assert.Equal(t, http.StatusForbidden, rsp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://play.example.com"}})
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	ws, _, err = websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "non-browser clients send no Origin")
	require.NoError(t, ws.Close())
}

func TestOriginChecker(t *testing.T) {
	assert.Nil(t, originChecker(nil))

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	check := originChecker([]string{"https://Play.example.com/"})
	assert.True(t, check(req("https://play.example.com")))
	assert.False(t, check(req("http://play.example.com")))
	assert.True(t, check(req("")))

	anyOrigin := originChecker([]string{"*"})
	assert.True(t, anyOrigin(req("https://anything.example")))
}
