// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/creachadair/grouplink"
	"github.com/creachadair/taskgroup"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFrameRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 7, 8, 127, 4096} {
		t.Run(fmt.Sprintf("size-%d", size), func(t *testing.T) {
			payload := make([]byte, size)
			rand.Read(payload)

			var buf bytes.Buffer
			in := grouplink.Frame{Payload: payload}
			if _, err := in.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo: %v", err)
			}
			if got, want := buf.Len(), 8+size; got != want {
				t.Errorf("Encoded length: got %d, want %d", got, want)
			}

			var out grouplink.Frame
			if _, err := out.ReadFrom(&buf); err != nil {
				t.Fatalf("ReadFrom: %v", err)
			}
			if diff := cmp.Diff(in.Payload, out.Payload, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Payload (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestFrameEncode(t *testing.T) {
	f := grouplink.Frame{Payload: []byte("abc")}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 3, 'a', 'b', 'c'}
	if diff := cmp.Diff(want, f.Encode()); diff != "" {
		t.Errorf("Encode (-want, +got):\n%s", diff)
	}

	var out grouplink.Frame
	if _, err := out.ReadFrom(bytes.NewReader(f.Encode())); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got := string(out.Payload); got != "abc" {
		t.Errorf("Payload: got %q, want %q", got, "abc")
	}
}

func TestFramePipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	g := taskgroup.New(nil)
	g.Go(func() error {
		f := grouplink.Frame{Payload: []byte("over the wire")}
		_, err := f.WriteTo(client)
		return err
	})

	var got grouplink.Frame
	if _, err := got.ReadFrom(server); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if string(got.Payload) != "over the wire" {
		t.Errorf("Payload: got %q, want %q", got.Payload, "over the wire")
	}
	if err := g.Wait(); err != nil {
		t.Errorf("WriteTo: %v", err)
	}
}

func TestFrameErrors(t *testing.T) {
	var terr *grouplink.TransportError

	t.Run("ShortHeader", func(t *testing.T) {
		var f grouplink.Frame
		_, err := f.ReadFrom(strings.NewReader("abc"))
		if !errors.As(err, &terr) {
			t.Fatalf("ReadFrom: got %v, want TransportError", err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("ReadFrom: got %v, want unexpected EOF", err)
		}
	})

	t.Run("ShortPayload", func(t *testing.T) {
		enc := grouplink.Frame{Payload: []byte("hello, world")}.Encode()

		var f grouplink.Frame
		_, err := f.ReadFrom(bytes.NewReader(enc[:12]))
		if !errors.As(err, &terr) {
			t.Fatalf("ReadFrom: got %v, want TransportError", err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("ReadFrom: got %v, want unexpected EOF", err)
		}
	})

	t.Run("WriteFailed", func(t *testing.T) {
		f := grouplink.Frame{Payload: []byte("doomed")}
		_, err := f.WriteTo(errWriter{})
		if !errors.As(err, &terr) {
			t.Fatalf("WriteTo: got %v, want TransportError", err)
		}
		if !errors.Is(err, errBroken) {
			t.Errorf("WriteTo: got %v, want %v", err, errBroken)
		}
	})
}

var errBroken = errors.New("broken writer")

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errBroken }
