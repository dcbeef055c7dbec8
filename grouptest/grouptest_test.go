package grouptest_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/creachadair/grouplink"
	"github.com/creachadair/grouplink/grouptest"
	"github.com/fortytw2/leaktest"
)

func TestStart(t *testing.T) {
	defer leaktest.Check(t)()

	const size = 4
	g, err := grouptest.Start(size, grouplink.WithPollInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer g.Stop()

	for rank := 1; rank < size; rank++ {
		if got := g.Workers[rank].Rank(); got != rank {
			t.Errorf("Worker %d reports rank %d", rank, got)
		}
		msg := fmt.Sprintf("hello, rank %d", rank)
		if err := g.Master.Send(rank, []byte(msg)); err != nil {
			t.Fatalf("Send to %d: %v", rank, err)
		}
		got, err := g.Workers[rank].Recv()
		if err != nil {
			t.Fatalf("Recv at %d: %v", rank, err)
		}
		if string(got) != msg {
			t.Errorf("Recv at %d: got %q, want %q", rank, got, msg)
		}
	}
	if err := g.Master.Err(); err != nil {
		t.Errorf("Err: unexpected error %v", err)
	}
}
