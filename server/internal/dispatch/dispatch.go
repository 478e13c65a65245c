package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"

	"go.uber.org/zap"

	"github.com/phuhao00/rpgserver/server/internal/metrics"
	"github.com/phuhao00/rpgserver/server/internal/protocol"
	"github.com/phuhao00/rpgserver/server/internal/scene"
	"github.com/phuhao00/rpgserver/server/internal/session"
	"github.com/phuhao00/rpgserver/server/internal/utils"
)

var (
	// ErrUnroutableCommand means no route is registered for the command id.
	ErrUnroutableCommand = errors.New("unroutable command")
	// ErrMalformedPayload means the body did not decode as the route's
	// request schema.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrInternalInconsistency is reported for handler panics.
	ErrInternalInconsistency = scene.ErrInternalInconsistency
)

// Handler serves one decoded request on a session.
type Handler[T any] func(ctx context.Context, sess *session.Session, req *T) error

// FailureFunc builds the response sent when a handler fails with a retcode.
type FailureFunc func(code protocol.Retcode) protocol.Message

type failure struct {
	cmd   protocol.CmdID
	build FailureFunc
}

type route struct {
	cmd     protocol.CmdID
	handle  func(ctx context.Context, sess *session.Session, body []byte) error
	failure *failure
}

// RouteOption configures a route at registration.
type RouteOption func(*route)

// WithFailure makes the dispatcher answer retcode-carrying handler errors
// with the response built by build under rspCmd.
func WithFailure(rspCmd protocol.CmdID, build FailureFunc) RouteOption {
	return func(r *route) {
		r.failure = &failure{cmd: rspCmd, build: build}
	}
}

// Dispatcher routes inbound packets to handlers by command id. Routes are
// registered during startup; after that the table is only read and may be
// shared by every session.
type Dispatcher struct {
	routes map[protocol.CmdID]*route
}

func New() *Dispatcher {
	return &Dispatcher{routes: make(map[protocol.CmdID]*route)}
}

// Register adds a typed route. Registering a command twice panics; the
// table is wired once at startup.
func Register[T any, PT interface {
	*T
	protocol.Message
}](d *Dispatcher, cmd protocol.CmdID, h Handler[T], opts ...RouteOption) {
	if _, dup := d.routes[cmd]; dup {
		panic(fmt.Sprintf("dispatch: %s registered twice", cmd))
	}
	r := &route{
		cmd: cmd,
		handle: func(ctx context.Context, sess *session.Session, body []byte) error {
			req := PT(new(T))
			if err := protocol.Unmarshal(body, req); err != nil {
				return fmt.Errorf("%s: %w: %v", cmd, ErrMalformedPayload, err)
			}
			return h(ctx, sess, (*T)(req))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	d.routes[cmd] = r
}

// Commands lists the routed command ids in ascending order.
func (d *Dispatcher) Commands() []protocol.CmdID {
	out := make([]protocol.CmdID, 0, len(d.routes))
	for cmd := range d.routes {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Routed reports whether cmd has a route.
func (d *Dispatcher) Routed(cmd protocol.CmdID) bool {
	_, ok := d.routes[cmd]
	return ok
}

// Dispatch decodes body as cmd's request and runs its handler.
//
// Unroutable and malformed packets return wrapped ErrUnroutableCommand and
// ErrMalformedPayload; the session stays usable. A handler error carrying a
// retcode is answered with the route's failure response, if it declares
// one, and is not returned. ErrInternalInconsistency, including recovered
// panics, is answered with RetServerInternalError and still returned. Other
// handler errors are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, cmd protocol.CmdID, body []byte) error {
	r, ok := d.routes[cmd]
	if !ok {
		observe(cmd, metrics.OutcomeUnroutable)
		return fmt.Errorf("cmd %d: %w", uint16(cmd), ErrUnroutableCommand)
	}

	err := invoke(ctx, r, sess, body)
	switch {
	case err == nil:
		observe(cmd, metrics.OutcomeOK)
		return nil
	case errors.Is(err, ErrMalformedPayload):
		observe(cmd, metrics.OutcomeMalformed)
		return err
	case errors.Is(err, ErrInternalInconsistency):
		observe(cmd, metrics.OutcomeInternal)
		if r.failure != nil {
			if sendErr := sess.Send(r.failure.cmd, r.failure.build(protocol.RetServerInternalError)); sendErr != nil {
				return sendErr
			}
		}
		return err
	}

	if code, ok := protocol.RetcodeOf(err); ok && r.failure != nil {
		utils.Logger().Debug("request failed",
			zap.String("cmd", cmd.String()),
			zap.Uint32("retcode", uint32(code)),
			zap.Uint32("uid", sess.PlayerUID()),
			zap.Error(err))
		if sendErr := sess.Send(r.failure.cmd, r.failure.build(code)); sendErr != nil {
			return sendErr
		}
		observe(cmd, metrics.OutcomeFailureRsp)
		return nil
	}
	observe(cmd, metrics.OutcomeHandlerError)
	return err
}

// Reject answers cmd with its failure response without running the
// handler. It reports false when the route declares no failure response.
func (d *Dispatcher) Reject(sess *session.Session, cmd protocol.CmdID, code protocol.Retcode) (bool, error) {
	r, ok := d.routes[cmd]
	if !ok || r.failure == nil {
		return false, nil
	}
	return true, sess.Send(r.failure.cmd, r.failure.build(code))
}

func invoke(ctx context.Context, r *route, sess *session.Session, body []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			utils.Logger().Error("handler panic",
				zap.String("cmd", r.cmd.String()),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("%s: panic: %v: %w", r.cmd, p, ErrInternalInconsistency)
		}
	}()
	return r.handle(ctx, sess, body)
}

func observe(cmd protocol.CmdID, outcome string) {
	metrics.DispatchTotal.WithLabelValues(metrics.CommandLabel(cmd), outcome).Inc()
}
