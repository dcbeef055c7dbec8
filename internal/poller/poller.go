// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package poller provides a cached poll(2) registration set over a fixed
// collection of stream connections, with interest in readability.
package poller

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// A Set is a reusable list of poll registrations, one slot per connection,
// aligned with the slice it was built from. A slot excluded after a
// failure is skipped by all subsequent waits; the list is never otherwise
// rebuilt.
type Set struct {
	fds []unix.PollFd
}

// NewSet builds a registration set for conns. A nil connection occupies a
// permanently excluded slot, so slot indexes match indexes into conns.
//
// Each connection must implement syscall.Conn. The captured descriptors
// remain valid only while the connections stay open: the caller must not
// close any of them until the Set is no longer used.
func NewSet(conns []net.Conn) (*Set, error) {
	fds := make([]unix.PollFd, len(conns))
	for i, conn := range conns {
		fds[i].Fd = -1
		if conn == nil {
			continue
		}
		sc, ok := conn.(syscall.Conn)
		if !ok {
			return nil, fmt.Errorf("connection %d exposes no descriptor", i)
		}
		rc, err := sc.SyscallConn()
		if err != nil {
			return nil, err
		}
		var fd int32
		if err := rc.Control(func(f uintptr) { fd = int32(f) }); err != nil {
			return nil, err
		}
		fds[i] = unix.PollFd{Fd: fd, Events: readEvents}
	}
	return &Set{fds: fds}, nil
}

// Wait blocks until some registered descriptor has a pending event or
// timeout elapses, and reports the number of descriptors with events; zero
// means the wait timed out. Interrupted waits are retried.
func (s *Set) Wait(timeout time.Duration) (int, error) {
	for i := range s.fds {
		s.fds[i].Revents = 0
	}
	for {
		n, err := unix.Poll(s.fds, int(timeout.Milliseconds()))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return n, err
	}
}

// An Event classifies the condition pending on a slot after a Wait.
type Event int

const (
	None     Event = iota // no pending event, or the slot is excluded
	Readable              // plain readability and nothing else
	Closed                // hang-up, error, or any other non-read condition
)

// Event reports the condition pending on slot i after the latest Wait.
func (s *Set) Event(i int) Event {
	re := s.fds[i].Revents
	switch {
	case s.fds[i].Fd < 0 || re == 0:
		return None
	case re&^unix.POLLIN != 0:
		return Closed
	default:
		return Readable
	}
}

// Exclude removes slot i from all future waits.
func (s *Set) Exclude(i int) { s.fds[i].Fd = -1 }
