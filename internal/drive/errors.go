package drive

import "fmt"

// TransportError wraps a failed remote call (network, quota, permission).
// During traversal it is fatal to the job; during per-item extraction it is
// recorded as a per-item failure.
type TransportError struct {
	Op         string // remote operation that failed, e.g. "files.list"
	StatusCode int    // HTTP status, 0 when the call never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote call %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote call %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
