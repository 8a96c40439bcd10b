package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// tcpConn carries DNS messages over a SOCKSv5 tunnel. The relay is a byte
// stream, so messages are framed with the 2-byte big-endian length prefix
// of DNS-over-TCP (RFC 1035 §4.2.2).
type tcpConn struct {
	conn connDeadlineRW
}

func (this *tcpConn) Send(msg []byte) error {

	if len(msg) > maxMsgSize {
		return IOError{Op: "send", Err: fmt.Errorf("message size %d exceeds frame limit", len(msg))}
	}

	frame := make([]byte, 2+len(msg))
	binary.BigEndian.PutUint16(frame, uint16(len(msg)))
	copy(frame[2:], msg)

	if _, err := this.conn.Write(frame); err != nil {
		return IOError{Op: "send", Err: err}
	}

	return nil
}

func (this *tcpConn) Recv(ctx context.Context, timeout time.Duration) ([]byte, error) {

	//	one cumulative deadline covers both the prefix and the payload reads
	stop, err := setRecvDeadline(ctx, this.conn, timeout)
	if err != nil {
		return nil, IOError{Op: "recv", Err: err}
	}
	defer stop()

	prefix := make([]byte, 2)
	if _, err := io.ReadFull(this.conn, prefix); err != nil {
		return nil, recvError(ctx, err)
	}

	size := binary.BigEndian.Uint16(prefix)
	if size == 0 {
		return nil, IOError{Op: "recv", Err: fmt.Errorf("zero length frame")}
	}

	buff := make([]byte, size)
	if _, err := io.ReadFull(this.conn, buff); err != nil {
		return nil, recvError(ctx, err)
	}

	return buff, nil
}

func (this *tcpConn) Close() error {
	return this.conn.Close()
}
