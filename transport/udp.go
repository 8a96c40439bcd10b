package transport

import (
	"context"
	"time"
)

// udpConn sends each DNS message as a single datagram.
// The socket is connected, so replies from other peers never show up here.
type udpConn struct {
	conn connDeadlineRW
}

func (this *udpConn) Send(msg []byte) error {

	if _, err := this.conn.Write(msg); err != nil {
		return IOError{Op: "send", Err: err}
	}

	return nil
}

func (this *udpConn) Recv(ctx context.Context, timeout time.Duration) ([]byte, error) {

	stop, err := setRecvDeadline(ctx, this.conn, timeout)
	if err != nil {
		return nil, IOError{Op: "recv", Err: err}
	}
	defer stop()

	buff := make([]byte, maxMsgSize)

	n, err := this.conn.Read(buff)
	if err != nil {
		return nil, recvError(ctx, err)
	}

	return buff[:n], nil
}

func (this *udpConn) Close() error {
	return this.conn.Close()
}
