// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/creachadair/grouplink/internal/poller"
)

const defaultPollInterval = 500 * time.Millisecond

// A monitor watches every worker connection for an asynchronous error
// report on behalf of a master. It is a one-shot detector: the first
// report it observes is latched for the life of the channel, after which
// the monitor task exits and no further worker failures are observed.
//
// The latch is write-once: the monitor is its only writer, Send and Err
// read it through an atomic pointer, and it is never cleared.
type monitor struct {
	conns    []net.Conn // shared with the master; read-only here
	interval time.Duration

	exiting atomic.Bool
	report  atomic.Pointer[RemoteError]

	set *poller.Set // built lazily on the first wait, then reused
}

func newMonitor(conns []net.Conn, interval time.Duration) *monitor {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &monitor{conns: conns, interval: interval}
}

// latched reports the first error recorded by the monitor, or nil.
func (m *monitor) latched() *RemoteError { return m.report.Load() }

// stop tells the monitor to exit. The monitor notices within one wait
// interval; the caller must still wait for the task to finish before
// closing the connections, since the poll set aliases their descriptors.
func (m *monitor) stop() { m.exiting.Store(true) }

// run is the monitor task. It blocks until some worker connection shows a
// pending event, converts what it finds into a RemoteError, latches it,
// and exits. It reports nil when stopped before anything was observed.
func (m *monitor) run() error {
	rep, ok := m.recvError()
	if !ok {
		return nil
	}
	if m.report.CompareAndSwap(nil, rep) {
		rootMetrics.errorsLatched.Add(1)
	}
	return nil
}

// recvError waits for readiness on any worker connection and returns the
// resulting report. It reports ok=false if the monitor was stopped before
// an event arrived. Failures of the wait itself are converted into a
// report rather than swallowed: an unhealthy poll is treated the same as
// an unhealthy connection.
func (m *monitor) recvError() (rep *RemoteError, ok bool) {
	if m.set == nil {
		set, err := poller.NewSet(m.conns)
		if err != nil {
			return &RemoteError{Message: "poll: " + err.Error()}, true
		}
		m.set = set
	}

	for {
		n, err := m.set.Wait(m.interval)
		if m.exiting.Load() {
			return nil, false
		}
		if err != nil {
			return &RemoteError{Message: "poll: " + err.Error()}, true
		}
		if n > 0 {
			break
		}
	}
	rootMetrics.monitorWakes.Add(1)

	for rank := 1; rank < len(m.conns); rank++ {
		switch m.set.Event(rank) {
		case poller.None:
			continue

		case poller.Closed:
			// The connection is dead; exclude it from future waits and
			// synthesize a report on the worker's behalf.
			m.set.Exclude(rank)
			return &RemoteError{Rank: rank, Message: "connection with worker has been closed"}, true

		case poller.Readable:
			var f Frame
			if _, err := f.ReadFrom(m.conns[rank]); err != nil {
				return &RemoteError{Rank: rank, Message: "recv: " + err.Error()}, true
			}
			return &RemoteError{Rank: rank, Message: string(f.Payload)}, true
		}
	}

	// Woken without a matching event on any connection.
	return &RemoteError{Message: "failed to receive error from worker"}, true
}
