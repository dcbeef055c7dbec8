// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink

import (
	"fmt"
	"net"
)

// A Worker is the worker side of a group command channel: a single
// connection to the master, carrying inbound command frames and outbound
// error reports.
//
// Recv and SendError use independent directions of the stream, so a
// failure handler may call SendError while another goroutine is blocked in
// Recv. Concurrent calls to SendError itself are not serialized and must
// be coordinated by the caller.
type Worker struct {
	rank int
	plog FrameLogger
	conn net.Conn
}

// NewWorker constructs a new unjoined worker with the given rank.
// Worker ranks are 1 through groupSize-1; the group size itself is known
// only to the master.
func NewWorker(rank int) *Worker { return &Worker{rank: rank} }

// Rank reports the worker's rank within its group.
func (w *Worker) Rank() int { return w.rank }

// LogFrames registers a callback that will be invoked for each frame
// exchanged with the master. Passing nil disables logging. LogFrames
// returns w to permit chaining; it must be called before Join.
func (w *Worker) LogFrames(log FrameLogger) *Worker { w.plog = log; return w }

// Join connects to the master at addr, registers the worker's rank, and
// blocks until the master confirms that the whole group has connected.
// A single attempt is made; any failure is a *BootstrapError. Join panics
// if w is already joined.
func (w *Worker) Join(addr string) error {
	if w.conn != nil {
		panic("worker is already joined")
	}
	if w.rank < 1 {
		return &BootstrapError{Err: fmt.Errorf("rank %d is not a worker rank", w.rank)}
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return &BootstrapError{Err: err}
	}
	if err := sendRank(conn, w.rank); err != nil {
		conn.Close()
		return &BootstrapError{Err: err}
	}
	if err := readConfirm(conn); err != nil {
		conn.Close()
		return &BootstrapError{Err: err}
	}
	w.conn = conn
	return nil
}

// Recv blocks until one command frame arrives from the master, and returns
// its payload. Frames are not queued across calls. A disconnect or short
// read is reported as a *TransportError.
func (w *Worker) Recv() ([]byte, error) {
	var f Frame
	if _, err := f.ReadFrom(w.conn); err != nil {
		return nil, err
	}
	rootMetrics.framesRecv.Add(1)
	if w.plog != nil {
		w.plog(FrameInfo{Frame: &f, Rank: w.rank, Sent: false})
	}
	return f.Payload, nil
}

// SendError reports a failure to the master: text is delivered as the
// payload of one frame on the error direction of the stream. Once the
// master's monitor observes it, every subsequent master send fails with
// this worker's rank and text.
func (w *Worker) SendError(text string) error {
	f := &Frame{Payload: []byte(text)}
	if w.plog != nil {
		w.plog(FrameInfo{Frame: f, Rank: w.rank, Sent: true})
	}
	if _, err := f.WriteTo(w.conn); err != nil {
		return err
	}
	rootMetrics.errorsSent.Add(1)
	return nil
}

// Close closes the connection to the master. It is safe to call Close on a
// worker that never joined.
func (w *Worker) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
