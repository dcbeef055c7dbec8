//go:build !linux

package poller

import "golang.org/x/sys/unix"

const readEvents = unix.POLLIN
