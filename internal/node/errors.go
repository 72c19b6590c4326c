package node

import (
	"errors"
	"fmt"
)

// The node error taxonomy. Each typed error carries the node's status code
// and detail text verbatim so failures can be diagnosed without a retry.
// Sentinels mark contract violations: the node reported success but returned
// no usable handle.

var (
	// ErrProtocolMissing means a configure call succeeded without returning
	// a protocol handle.
	ErrProtocolMissing = errors.New("node returned no protocol for successful configure")

	// ErrRecordMissing means a create call succeeded without returning a
	// record handle.
	ErrRecordMissing = errors.New("node returned no record for successful create")
)

// QueryError reports a failed protocol or record query.
type QueryError struct {
	Code   int
	Detail string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("node query failed: status %d: %s", e.Code, e.Detail)
}

// ConfigureError reports a failed protocol configure or publish.
type ConfigureError struct {
	Code   int
	Detail string
}

func (e *ConfigureError) Error() string {
	return fmt.Sprintf("node configure failed: status %d: %s", e.Code, e.Detail)
}

// CreateError reports a failed record create.
type CreateError struct {
	Code   int
	Detail string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("node create failed: status %d: %s", e.Code, e.Detail)
}

// SendError reports a failed record send to a remote replica.
type SendError struct {
	Code   int
	Detail string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("node send failed: status %d: %s", e.Code, e.Detail)
}
