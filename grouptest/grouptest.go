// Package grouptest provides support code for standing up complete
// master/worker groups for testing.
package grouptest

import (
	"net"

	"github.com/creachadair/grouplink"
	"github.com/creachadair/taskgroup"
)

// A Group is a bootstrapped master with its workers, connected over
// loopback TCP, suitable for testing.
type Group struct {
	Master  *grouplink.Master
	Workers []*grouplink.Worker // indexed by rank; slot 0 is nil
}

// Start launches a group with groupSize total participants on a loopback
// address: a master plus workers with ranks 1 through groupSize-1. When
// Start returns without error the handshake is complete on every side.
func Start(groupSize int, opts ...grouplink.MasterOption) (*Group, error) {
	lst, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	addr := lst.Addr().String()

	g := &Group{
		Master:  grouplink.NewMaster(groupSize, opts...),
		Workers: make([]*grouplink.Worker, groupSize),
	}
	tg := taskgroup.New(nil)
	tg.Go(func() error { return g.Master.Bootstrap(lst) })
	for rank := 1; rank < groupSize; rank++ {
		w := grouplink.NewWorker(rank)
		g.Workers[rank] = w
		tg.Go(func() error { return w.Join(addr) })
	}
	if err := tg.Wait(); err != nil {
		g.Stop()
		return nil, err
	}
	return g, nil
}

// Stop closes the master and every worker, and reports the first error it
// encounters doing so.
func (g *Group) Stop() error {
	err := g.Master.Close()
	for _, w := range g.Workers {
		if w == nil {
			continue
		}
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
