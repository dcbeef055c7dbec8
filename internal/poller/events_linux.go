package poller

import "golang.org/x/sys/unix"

// Registering POLLRDHUP makes a peer shutdown surface as a distinct
// condition instead of a plain read of EOF.
const readEvents = unix.POLLIN | unix.POLLRDHUP
