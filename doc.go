// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package grouplink implements the transport layer of a master/worker
// computation group: one master process addressing a fixed set of worker
// processes by rank.
//
// The master delivers opaque command payloads to individual workers, and
// each worker can report a failure back to the master out of band. Every
// payload travels as a [Frame], a length-prefixed binary unit used
// identically in both directions.
//
// # Bootstrap
//
// Group membership is fixed at startup by a single handshake. The master
// listens and accepts one connection per worker; each worker announces its
// rank and then blocks until the master confirms. The master withholds all
// confirmations until every rank has registered, so the handshake doubles
// as a barrier: no participant proceeds until the whole group is
// connected.
//
//	m := grouplink.NewMaster(4)
//	if err := m.Listen(":7450"); err != nil {
//	   log.Fatalf("Bootstrap failed: %v", err)
//	}
//	defer m.Close()
//
//	w := grouplink.NewWorker(2)
//	if err := w.Join("master:7450"); err != nil {
//	   log.Fatalf("Join failed: %v", err)
//	}
//	defer w.Close()
//
// There is no retry and no dynamic membership: any handshake failure is a
// [BootstrapError] and the group must be restarted.
//
// # Sending commands
//
// [Master.Send] writes one frame to the worker with the given rank, and
// [Worker.Recv] returns the payload of the next frame from the master.
// Frames on one connection arrive in send order; across ranks there is no
// ordering guarantee. Sends to distinct ranks may run concurrently, but
// calls addressing a single rank must be serialized by the caller.
//
// # Error reporting
//
// A worker signals failure with [Worker.SendError]. On the master, a
// background monitor waits for readiness across all worker connections;
// when a report arrives, or a connection dies, the monitor records a
// [RemoteError] and exits. The record is sticky and whole-channel: every
// later Send to any rank fails with the first recorded error, which is
// never cleared. The monitor is deliberately one-shot; worker failures
// after the first are not observed.
//
// # Metrics
//
// Channels maintain expvar counters while running; use [Master.Metrics] to
// obtain the map. The [FrameLogger] callback, installed with LogFrames on
// either side, observes individual frames as they are exchanged.
package grouplink
