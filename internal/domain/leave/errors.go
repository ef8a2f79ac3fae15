package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveRequestNotCancellable   = errors.New("leave request can no longer be cancelled")
	ErrLeaveRequestNotEditable      = errors.New("only pending leave requests can be edited")
)
