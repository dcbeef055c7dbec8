// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package grouplink

import "expvar"

// channelMetrics record group channel activity counters.
type channelMetrics struct {
	framesSent    expvar.Int // command frames written by masters
	framesRecv    expvar.Int // command frames read by workers
	errorsSent    expvar.Int // error frames written by workers
	errorsLatched expvar.Int // reports recorded by error monitors
	monitorWakes  expvar.Int // monitor wakeups with pending events

	emap *expvar.Map
}

var rootMetrics = newChannelMetrics()

func newChannelMetrics() *channelMetrics {
	cm := &channelMetrics{emap: new(expvar.Map)}
	cm.emap.Set("frames_sent", &cm.framesSent)
	cm.emap.Set("frames_received", &cm.framesRecv)
	cm.emap.Set("errors_sent", &cm.errorsSent)
	cm.emap.Set("errors_latched", &cm.errorsLatched)
	cm.emap.Set("monitor_wakeups", &cm.monitorWakes)
	return cm
}
