package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
	"github.com/phuhao00/rpgserver/server/internal/session"
)

func newSession(t *testing.T) (*session.Session, *session.Queue) {
	t.Helper()
	idx, err := data.NewIndex(nil, nil, nil)
	require.NoError(t, err)
	q := session.NewQueue(8)
	return session.New(q, "test", scene.NewMachine(idx, scene.NewRegistry(idx)), session.Options{}), q
}

func enterSceneFailure(code protocol.Retcode) protocol.Message {
	return &protocol.EnterSceneScRsp{Retcode: code}
}

func sent(t *testing.T, q *session.Queue) []protocol.Packet {
	t.Helper()
	var out []protocol.Packet
	for _, f := range q.Drain() {
		pkt, err := protocol.DecodeFrame(f)
		require.NoError(t, err)
		out = append(out, pkt)
	}
	return out
}

func TestDispatchDecodesAndInvokes(t *testing.T) {
	d := New()
	var got uint32
	Register(d, protocol.CmdEnterSceneCsReq, func(_ context.Context, sess *session.Session, req *protocol.EnterSceneCsReq) error {
		got = req.EntryID
		return sess.Send(protocol.CmdEnterSceneScRsp, &protocol.EnterSceneScRsp{})
	})
	sess, q := newSession(t)

	before := testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues("EnterSceneCsReq", metrics.OutcomeOK))
	body := protocol.Marshal(&protocol.EnterSceneCsReq{EntryID: 2010101})
	require.NoError(t, d.Dispatch(context.Background(), sess, protocol.CmdEnterSceneCsReq, body))

	assert.Equal(t, uint32(2010101), got)
	pkts := sent(t, q)
	require.Len(t, pkts, 1)
	assert.Equal(t, protocol.CmdEnterSceneScRsp, pkts[0].CmdID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues("EnterSceneCsReq", metrics.OutcomeOK)))
}

func TestUnroutableIsNonFatal(t *testing.T) {
	d := New()
	calls := 0
	Register(d, protocol.CmdLeaveSceneCsReq, func(context.Context, *session.Session, *protocol.LeaveSceneCsReq) error {
		calls++
		return nil
	})
	sess, q := newSession(t)

	err := d.Dispatch(context.Background(), sess, protocol.CmdID(65000), nil)
	assert.ErrorIs(t, err, ErrUnroutableCommand)
	assert.Empty(t, sent(t, q))

	require.NoError(t, d.Dispatch(context.Background(), sess, protocol.CmdLeaveSceneCsReq, nil))
	assert.Equal(t, 1, calls)
}

func TestMalformedPayloadSkipsHandler(t *testing.T) {
	d := New()
	called := false
	Register(d, protocol.CmdEnterSceneCsReq, func(context.Context, *session.Session, *protocol.EnterSceneCsReq) error {
		called = true
		return nil
	}, WithFailure(protocol.CmdEnterSceneScRsp, enterSceneFailure))
	sess, q := newSession(t)

	// Field 1 as a varint with its continuation bit set and nothing after.
	err := d.Dispatch(context.Background(), sess, protocol.CmdEnterSceneCsReq, []byte{0x08, 0x80})
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.False(t, called)
	assert.Empty(t, sent(t, q))
}

func TestRetcodeErrorAnsweredWithFailure(t *testing.T) {
	d := New()
	Register(d, protocol.CmdEnterSceneCsReq, func(context.Context, *session.Session, *protocol.EnterSceneCsReq) error {
		return protocol.WithRetcode(protocol.RetSceneEntryIDNotMatch, scene.ErrUnknownEntrance)
	}, WithFailure(protocol.CmdEnterSceneScRsp, enterSceneFailure))
	sess, q := newSession(t)

	require.NoError(t, d.Dispatch(context.Background(), sess, protocol.CmdEnterSceneCsReq, nil))

	pkts := sent(t, q)
	require.Len(t, pkts, 1)
	assert.Equal(t, protocol.CmdEnterSceneScRsp, pkts[0].CmdID)
	var rsp protocol.EnterSceneScRsp
	require.NoError(t, protocol.Unmarshal(pkts[0].Body, &rsp))
	assert.Equal(t, protocol.RetSceneEntryIDNotMatch, rsp.Retcode)
}

func TestHandlerErrorWithoutFailureIsReturned(t *testing.T) {
	d := New()
	boom := errors.New("boom")
	Register(d, protocol.CmdLeaveSceneCsReq, func(context.Context, *session.Session, *protocol.LeaveSceneCsReq) error {
		return protocol.WithRetcode(protocol.RetFail, boom)
	})
	sess, _ := newSession(t)

	err := d.Dispatch(context.Background(), sess, protocol.CmdLeaveSceneCsReq, nil)
	assert.ErrorIs(t, err, boom)
}

func TestPanicIsRecovered(t *testing.T) {
	d := New()
	Register(d, protocol.CmdEnterSceneCsReq, func(context.Context, *session.Session, *protocol.EnterSceneCsReq) error {
		panic("nil scene")
	}, WithFailure(protocol.CmdEnterSceneScRsp, enterSceneFailure))
	sess, q := newSession(t)

	err := d.Dispatch(context.Background(), sess, protocol.CmdEnterSceneCsReq, nil)
	assert.ErrorIs(t, err, ErrInternalInconsistency)

	pkts := sent(t, q)
	require.Len(t, pkts, 1)
	var rsp protocol.EnterSceneScRsp
	require.NoError(t, protocol.Unmarshal(pkts[0].Body, &rsp))
	assert.Equal(t, protocol.RetServerInternalError, rsp.Retcode)
}

func TestClosedSessionSurfacesChannelClosed(t *testing.T) {
	d := New()
	Register(d, protocol.CmdLeaveSceneCsReq, func(_ context.Context, sess *session.Session, _ *protocol.LeaveSceneCsReq) error {
		return sess.Send(protocol.CmdLeaveSceneScRsp, &protocol.LeaveSceneScRsp{})
	})
	sess, _ := newSession(t)
	sess.Close()

	err := d.Dispatch(context.Background(), sess, protocol.CmdLeaveSceneCsReq, nil)
	assert.ErrorIs(t, err, session.ErrChannelClosed)
}

func TestCommandsAndReject(t *testing.T) {
	d := New()
	noop := func(context.Context, *session.Session, *protocol.EnterSceneCsReq) error { return nil }
	Register(d, protocol.CmdEnterSceneCsReq, noop, WithFailure(protocol.CmdEnterSceneScRsp, enterSceneFailure))
	Register(d, protocol.CmdLeaveSceneCsReq, func(context.Context, *session.Session, *protocol.LeaveSceneCsReq) error { return nil })

	assert.Equal(t, []protocol.CmdID{protocol.CmdEnterSceneCsReq, protocol.CmdLeaveSceneCsReq}, d.Commands())
	assert.True(t, d.Routed(protocol.CmdLeaveSceneCsReq))
	assert.Panics(t, func() { Register(d, protocol.CmdEnterSceneCsReq, noop) })

	sess, q := newSession(t)
	ok, err := d.Reject(sess, protocol.CmdEnterSceneCsReq, protocol.RetNotLoggedIn)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.Reject(sess, protocol.CmdLeaveSceneCsReq, protocol.RetNotLoggedIn)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, sent(t, q), 1)
}

func TestUnknownCommandsShareOneSeries(t *testing.T) {
	d := New()
	sess, _ := newSession(t)

	before := testutil.CollectAndCount(metrics.DispatchTotal)
	unknown := testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues(metrics.UnknownCommand, metrics.OutcomeUnroutable))
	for id := 40000; id < 45000; id++ {
		err := d.Dispatch(context.Background(), sess, protocol.CmdID(id), nil)
		require.ErrorIs(t, err, ErrUnroutableCommand)
	}

	assert.LessOrEqual(t, testutil.CollectAndCount(metrics.DispatchTotal), before+1)
	assert.Equal(t, unknown+5000,
		testutil.ToFloat64(metrics.DispatchTotal.WithLabelValues(metrics.UnknownCommand, metrics.OutcomeUnroutable)))
}
