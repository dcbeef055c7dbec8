package grouplink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// A Frame is the unit of transfer on every group connection: an opaque
// payload carried behind an 8-byte big-endian length prefix. The payload is
// interpreted by direction, not by a type tag: frames from master to worker
// carry encoded commands, frames from worker to master carry error text.
type Frame struct {
	Payload []byte
}

// Encode encodes f in binary format.
func (f Frame) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 8+len(f.Payload)))
	if _, err := f.WriteTo(buf); err != nil {
		panic(fmt.Errorf("encoding frame: %w", err))
	}
	return buf.Bytes()
}

// WriteTo writes the frame to w in binary format. It satisfies io.WriterTo.
// A short write or peer disconnect is reported as a *TransportError.
// No partial-frame state survives a failed call.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], uint64(len(f.Payload)))
	nw, err := w.Write(hdr[:])
	if err == nil && len(f.Payload) != 0 {
		var np int
		np, err = w.Write(f.Payload)
		nw += np
	}
	if err != nil {
		return int64(nw), &TransportError{Op: "write frame", Err: err}
	}
	return int64(nw), nil
}

// ReadFrom reads a frame from r in binary format. It satisfies
// io.ReaderFrom. Each call is blocking and self-contained: it reads exactly
// one length prefix and exactly that many payload bytes, and reports a
// *TransportError on a short read or disconnect.
func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
	var hdr [8]byte
	nr, err := io.ReadFull(r, hdr[:])
	if err != nil {
		return int64(nr), &TransportError{Op: "read frame header", Err: err}
	}
	if size := binary.BigEndian.Uint64(hdr[:]); size > 0 {
		f.Payload = make([]byte, int(size))
		var np int
		np, err = io.ReadFull(r, f.Payload)
		nr += np
		if err != nil {
			return int64(nr), &TransportError{Op: "read frame payload", Err: err}
		}
	} else {
		f.Payload = nil
	}
	return int64(nr), nil
}

// String returns a human-friendly rendering of the frame.
func (f *Frame) String() string {
	if len(f.Payload) > 16 {
		return fmt.Sprintf("Frame([%d bytes] %+v ...)", len(f.Payload), f.Payload[:16])
	}
	return fmt.Sprintf("Frame([%d bytes] %+v)", len(f.Payload), f.Payload)
}

// A FrameInfo combines a frame with the worker rank it concerns and a flag
// indicating whether the frame was sent or received.
type FrameInfo struct {
	*Frame      // the frame being logged
	Rank   int  // the worker rank the frame was sent to or received for
	Sent   bool // whether the frame was sent (true) or received (false)
}

func (f FrameInfo) dir() string {
	if f.Sent {
		return "send"
	}
	return "recv"
}

func (f FrameInfo) String() string {
	return fmt.Sprintf("%v rank=%d %v", f.dir(), f.Rank, f.Frame)
}

// A FrameLogger logs a frame exchanged on a group connection.
type FrameLogger func(FrameInfo)
