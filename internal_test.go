package grouplink

import (
	"net"
	"testing"

	"github.com/creachadair/taskgroup"
)

func TestHandshakeValues(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	g := taskgroup.New(nil)
	g.Go(func() error { return sendRank(client, 37) })
	rank, err := readRank(server)
	if err != nil {
		t.Fatalf("readRank: %v", err)
	}
	if rank != 37 {
		t.Errorf("readRank: got %d, want 37", rank)
	}
	if err := g.Wait(); err != nil {
		t.Errorf("sendRank: %v", err)
	}

	g.Go(func() error {
		_, err := server.Write([]byte{confirmByte})
		return err
	})
	if err := readConfirm(client); err != nil {
		t.Errorf("readConfirm: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Errorf("write confirmation: %v", err)
	}

	server.Close()
	if err := readConfirm(client); err == nil {
		t.Error("readConfirm on a closed connection should fail")
	}
}
