// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink

import (
	"errors"
	"fmt"
)

// ErrInvalidRank is reported by [Master.Send] when the target rank is
// outside the group's worker range.
var ErrInvalidRank = errors.New("invalid worker rank")

// BootstrapError is the concrete type of errors reported during the group
// handshake by [Master.Listen], [Master.Bootstrap], and [Worker.Join].
// Handshake failures are fatal: the channel is not usable afterward and no
// retry is attempted.
type BootstrapError struct {
	Err error
}

// Error satisfies the error interface.
func (b *BootstrapError) Error() string { return "bootstrap: " + b.Err.Error() }

// Unwrap reports the underlying error of b.
func (b *BootstrapError) Unwrap() error { return b.Err }

// TransportError is the concrete type of I/O errors on an established group
// connection during frame transfer.
type TransportError struct {
	Op  string // the operation that failed, e.g. "read frame header"
	Err error  // the underlying I/O error
}

// Error satisfies the error interface.
func (t *TransportError) Error() string { return t.Op + ": " + t.Err.Error() }

// Unwrap reports the underlying error of t.
func (t *TransportError) Unwrap() error { return t.Err }

// RemoteError is a failure reported by a worker, or observed on a worker's
// connection by the master's error monitor. Once the monitor records one,
// every subsequent [Master.Send] to any rank reports the same value: the
// record is never retried and never cleared.
type RemoteError struct {
	Rank    int    // the worker the report concerns; 0 if not attributable
	Message string // the reported error text
}

// Error satisfies the error interface.
func (r *RemoteError) Error() string {
	return fmt.Sprintf("error (rank %d): %s", r.Rank, r.Message)
}
