package grouplink

// Bootstrap control values, exchanged outside the frame format: each worker
// sends its rank as 4 big-endian bytes immediately after connecting, and
// the master answers with a single confirmation byte once the whole group
// has registered.

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const confirmByte = 1

func sendRank(conn net.Conn, rank int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(rank))
	if _, err := conn.Write(buf[:]); err != nil {
		return fmt.Errorf("sending rank: %w", err)
	}
	return nil
}

func readRank(conn net.Conn) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return 0, fmt.Errorf("reading rank: %w", err)
	}
	return int(binary.BigEndian.Uint32(buf[:])), nil
}

func readConfirm(conn net.Conn) error {
	var buf [1]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	return nil
}
