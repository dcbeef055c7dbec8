// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink

import (
	"errors"
	"expvar"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/creachadair/taskgroup"
)

// A Master is the master side of a group command channel. It owns one
// connection per worker, established by a single bootstrap handshake, and
// delivers opaque command payloads to individual workers by rank.
//
// Construct a master with [NewMaster] and run the handshake with
// [Master.Listen] or [Master.Bootstrap]. Once the handshake completes, a
// background monitor watches every worker connection for an asynchronous
// error report; the first report observed poisons all further sends.
//
// Call [Master.Close] to stop the monitor and release the connections.
type Master struct {
	groupSize    int
	pollInterval time.Duration // 0 selects the default
	plog         FrameLogger
	metrics      *channelMetrics

	conns []net.Conn // rank → connection; slot 0 is unused after bootstrap
	mon   *monitor
	tasks *taskgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// A MasterOption configures a Master.
type MasterOption func(*Master)

// WithPollInterval sets the bounded wait interval for the master's error
// monitor. Values d ≤ 0 select the default of 500ms. The interval bounds
// how long teardown and failure detection can lag.
func WithPollInterval(d time.Duration) MasterOption {
	return func(m *Master) { m.pollInterval = d }
}

// NewMaster constructs a new unstarted master for a group with groupSize
// total participants: the master itself plus groupSize-1 workers with ranks
// 1 through groupSize-1.
func NewMaster(groupSize int, opts ...MasterOption) *Master {
	m := &Master{groupSize: groupSize, metrics: rootMetrics}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LogFrames registers a callback that will be invoked for each command
// frame sent by the master, prior to writing it. Passing nil disables
// logging. LogFrames returns m to permit chaining; it must not be called
// concurrently with Send.
func (m *Master) LogFrames(log FrameLogger) *Master { m.plog = log; return m }

// Metrics returns a metrics map shared by the group channels in this
// process. It is safe for the caller to add additional metrics to the map.
func (m *Master) Metrics() *expvar.Map { return m.metrics.emap }

// Listen binds a TCP listener on addr and runs the bootstrap handshake on
// it. It is shorthand for net.Listen followed by [Master.Bootstrap].
func (m *Master) Listen(addr string) error {
	if m.conns != nil {
		panic("master is already started")
	}
	lst, err := net.Listen("tcp", addr)
	if err != nil {
		return &BootstrapError{Err: err}
	}
	return m.Bootstrap(lst)
}

// Bootstrap accepts exactly groupSize-1 connections from lst, registering
// each under the rank the peer announces, then releases the workers and
// starts the error monitor. The listener is closed before Bootstrap
// returns and is never reused.
//
// The handshake is a barrier: every worker blocks awaiting a confirmation
// byte, and the master withholds all confirmations until every rank has
// registered, so no worker's handshake completes before the whole group
// has connected. Confirmations are sent in ascending rank order.
//
// A rank outside [1, groupSize), a duplicate registration, or any I/O
// failure aborts the handshake with a *BootstrapError; no retry is
// attempted. Bootstrap panics if m is already started.
func (m *Master) Bootstrap(lst net.Listener) error {
	if m.conns != nil {
		panic("master is already started")
	}
	defer lst.Close()

	conns := make([]net.Conn, m.groupSize)
	fail := func(err error) error {
		for _, c := range conns {
			if c != nil {
				c.Close()
			}
		}
		return &BootstrapError{Err: err}
	}
	if m.groupSize < 2 {
		return fail(fmt.Errorf("group size %d admits no workers", m.groupSize))
	}

	for i := 1; i < m.groupSize; i++ {
		conn, err := lst.Accept()
		if err != nil {
			return fail(err)
		}
		rank, err := readRank(conn)
		if err != nil {
			conn.Close()
			return fail(err)
		}
		if rank < 1 || rank >= m.groupSize {
			conn.Close()
			return fail(fmt.Errorf("rank %d out of range for group size %d", rank, m.groupSize))
		}
		if conns[rank] != nil {
			conn.Close()
			return fail(fmt.Errorf("duplicate registration for rank %d", rank))
		}
		conns[rank] = conn
	}

	// Registration is complete; release the workers. Each worker blocks on
	// its confirmation byte, so none proceeds until all have connected.
	for rank := 1; rank < m.groupSize; rank++ {
		if _, err := conns[rank].Write([]byte{confirmByte}); err != nil {
			return fail(fmt.Errorf("confirming rank %d: %w", rank, err))
		}
	}

	m.conns = conns
	m.mon = newMonitor(conns, m.pollInterval)
	m.tasks = taskgroup.New(nil)
	m.tasks.Go(m.mon.run)
	return nil
}

// Send delivers payload as one frame to the worker with the given rank.
// It is synchronous in the transport sense only: it returns once the local
// side accepts the bytes, not once the worker has processed them.
//
// If the error monitor has recorded a worker failure, Send reports that
// *RemoteError without writing, and every subsequent Send to any rank
// fails the same way. A rank outside [1, groupSize) reports an error
// satisfying errors.Is(err, ErrInvalidRank).
//
// Sends to distinct ranks may proceed concurrently; concurrent sends to a
// single rank must be serialized by the caller.
func (m *Master) Send(rank int, payload []byte) error {
	if m.mon == nil {
		return errors.New("master is not started")
	}
	if rep := m.mon.latched(); rep != nil {
		return rep
	}
	if rank < 1 || rank >= m.groupSize {
		return fmt.Errorf("rank %d: %w", rank, ErrInvalidRank)
	}
	f := &Frame{Payload: payload}
	if m.plog != nil {
		m.plog(FrameInfo{Frame: f, Rank: rank, Sent: true})
	}
	if _, err := f.WriteTo(m.conns[rank]); err != nil {
		return err
	}
	m.metrics.framesSent.Add(1)
	return nil
}

// Err reports the error latched by the monitor, or nil if no worker
// failure has been observed.
func (m *Master) Err() error {
	if m.mon == nil {
		return nil
	}
	if rep := m.mon.latched(); rep != nil {
		return rep
	}
	return nil
}

// Close signals the error monitor, waits for it to exit, and closes every
// worker connection. It is safe to call Close more than once; later calls
// report the same result.
func (m *Master) Close() error {
	m.closeOnce.Do(func() {
		if m.mon != nil {
			m.mon.stop()
			m.tasks.Wait()
		}
		for _, conn := range m.conns {
			if conn == nil {
				continue
			}
			if err := conn.Close(); err != nil && m.closeErr == nil {
				m.closeErr = err
			}
		}
	})
	return m.closeErr
}
