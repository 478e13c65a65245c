package protocol

import (
	"errors"
	"fmt"
)

// Retcode is the result code carried by every *ScRsp.
type Retcode uint32

const (
	RetSucc                 Retcode = 0
	RetFail                 Retcode = 1
	RetServerInternalError  Retcode = 2
	RetTimeout              Retcode = 3
	RetReqParaInvalid       Retcode = 4
	RetNotLoggedIn          Retcode = 5
	RetTokenInvalid         Retcode = 6
	RetRepeatLogin          Retcode = 7
	RetSceneEntryIDNotMatch Retcode = 301
	RetSceneNotInScene      Retcode = 302
)

// RetcodeError attaches a wire retcode to a handler error so the dispatcher
// can answer with a failure response instead of dropping the request.
type RetcodeError struct {
	Code Retcode
	Err  error
}

func (e *RetcodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("retcode %d", e.Code)
	}
	return fmt.Sprintf("retcode %d: %v", e.Code, e.Err)
}

func (e *RetcodeError) Unwrap() error { return e.Err }

// WithRetcode wraps err with a wire retcode.
func WithRetcode(code Retcode, err error) error {
	return &RetcodeError{Code: code, Err: err}
}

// RetcodeOf extracts the retcode attached to err, if any.
func RetcodeOf(err error) (Retcode, bool) {
	var rerr *RetcodeError
	if errors.As(err, &rerr) {
		return rerr.Code, true
	}
	return RetSucc, false
}
