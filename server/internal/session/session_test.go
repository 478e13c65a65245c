package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
)

func newTestSession(t *testing.T, queueSize int, opts Options) (*Session, *Queue) {
	t.Helper()
	idx, err := data.NewIndex(nil, nil, nil)
	require.NoError(t, err)
	q := NewQueue(queueSize)
	return New(q, "127.0.0.1:5000", scene.NewMachine(idx, scene.NewRegistry(idx)), opts), q
}

func decode(t *testing.T, frame []byte) protocol.Packet {
	t.Helper()
	pkt, err := protocol.DecodeFrame(frame)
	require.NoError(t, err)
	return pkt
}

func TestSendPreservesOrder(t *testing.T) {
	s, q := newTestSession(t, 16, Options{})

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.Send(protocol.CmdPlayerHeartBeatScRsp, &protocol.PlayerHeartBeatScRsp{ClientTimeMs: i}))
	}
	for i := uint64(1); i <= 5; i++ {
		pkt := decode(t, <-q.Frames())
		assert.Equal(t, protocol.CmdPlayerHeartBeatScRsp, pkt.CmdID)
		var rsp protocol.PlayerHeartBeatScRsp
		require.NoError(t, protocol.Unmarshal(pkt.Body, &rsp))
		assert.Equal(t, i, rsp.ClientTimeMs)
	}
}

func TestConcurrentSendsKeepPerSenderOrder(t *testing.T) {
	const senders, perSender = 4, 50
	s, q := newTestSession(t, senders*perSender, Options{})

	var wg sync.WaitGroup
	for g := 0; g < senders; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				msg := &protocol.PlayerHeartBeatScRsp{ClientTimeMs: uint64(g), ServerTimeMs: uint64(i)}
				assert.NoError(t, s.Send(protocol.CmdPlayerHeartBeatScRsp, msg))
			}
		}(g)
	}
	wg.Wait()

	last := map[uint64]int{}
	for n := 0; n < senders*perSender; n++ {
		var rsp protocol.PlayerHeartBeatScRsp
		require.NoError(t, protocol.Unmarshal(decode(t, <-q.Frames()).Body, &rsp))
		prev, seen := last[rsp.ClientTimeMs]
		if seen {
			assert.Greater(t, int(rsp.ServerTimeMs), prev)
		}
		last[rsp.ClientTimeMs] = int(rsp.ServerTimeMs)
	}
	assert.Len(t, last, senders)
}

func TestSendAfterCloseFails(t *testing.T) {
	s, _ := newTestSession(t, 4, Options{})
	s.Close()
	s.Close()

	err := s.Send(protocol.CmdEnterSceneScRsp, &protocol.EnterSceneScRsp{})
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.True(t, s.Closed())
	assert.Equal(t, scene.StateDisconnected, s.Scene().State())
}

func TestBlockedSendReleasedByClose(t *testing.T) {
	s, _ := newTestSession(t, 1, Options{})
	require.NoError(t, s.Send(protocol.CmdLeaveSceneScRsp, &protocol.LeaveSceneScRsp{}))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Send(protocol.CmdLeaveSceneScRsp, &protocol.LeaveSceneScRsp{}) }()

	time.Sleep(20 * time.Millisecond)
	s.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrChannelClosed)
	case <-time.After(time.Second):
		t.Fatal("send still blocked after close")
	}
}

func TestDrainReturnsBufferedFrames(t *testing.T) {
	s, q := newTestSession(t, 4, Options{})
	require.NoError(t, s.Send(protocol.CmdPlayerKickOutScNotify, &protocol.PlayerKickOutScNotify{KickType: protocol.KickTypeLoginElsewhere}))
	s.Close()

	frames := q.Drain()
	require.Len(t, frames, 1)
	assert.Equal(t, protocol.CmdPlayerKickOutScNotify, decode(t, frames[0]).CmdID)
	assert.Empty(t, q.Drain())
}

func TestPlayerInfoIsACopy(t *testing.T) {
	s, _ := newTestSession(t, 1, Options{})
	assert.False(t, s.LoggedIn())
	assert.Zero(t, s.PlayerUID())

	s.SetPlayer(model.NewPlayer(42, "trailblazer", []uint32{1309}, time.Now()))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, uint32(42), s.PlayerUID())

	info := s.PlayerInfo()
	info.Lineup.Avatars[0].AvatarID = 1
	assert.Equal(t, uint32(1309), s.PlayerInfo().Lineup.Avatars[0].AvatarID)
	assert.Equal(t, uint32(42), s.Owner().UID)
	assert.Equal(t, uint32(42), s.Info().UID)
	assert.NotEmpty(t, s.ID())
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestSession(t, 1, Options{PacketsPerSecond: 1, Burst: 2})
	assert.True(t, s.Allow())
	assert.True(t, s.Allow())
	assert.False(t, s.Allow())

	unlimited, _ := newTestSession(t, 1, Options{})
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow())
	}
}
