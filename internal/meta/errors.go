package meta

import "fmt"

// InvalidStateError reports a control request that is not legal in the
// controller's current state. No state change occurs.
type InvalidStateError struct {
	Request string
	State   Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Request, e.State)
}

// CanonicalizationError reports a malformed raw item. It is always downgraded
// to a per-item failure and never propagated out of the scheduler.
type CanonicalizationError struct {
	ItemID string
	Err    error
}

func (e *CanonicalizationError) Error() string {
	return fmt.Sprintf("canonicalizing item %s: %v", e.ItemID, e.Err)
}

func (e *CanonicalizationError) Unwrap() error { return e.Err }
