package transport

import (
	"context"
	"errors"
	"net"
	"time"
)

// Conn moves whole DNS messages to and from the server,
// hiding whether they travel as raw datagrams or over a proxied stream
type Conn interface {

	// Send transmits a single DNS message
	Send(msg []byte) error

	// Recv blocks for at most timeout waiting for the next message.
	// A timeout of zero means wait indefinitely. Returns ErrTimeout when
	// the budget runs out; ctx cancellation aborts the wait early with
	// the context's error.
	Recv(ctx context.Context, timeout time.Duration) ([]byte, error)

	Close() error
}

// ErrTimeout indicates that no message arrived within the receive budget
var ErrTimeout = errors.New("transport: receive timed out")

// ConnectError wraps failures to establish the transport in the first place
type ConnectError struct {
	Err error
}

func (this ConnectError) Error() string {
	return "transport: connect: " + this.Err.Error()
}

func (this ConnectError) Unwrap() error {
	return this.Err
}

// IOError wraps read/write failures on an already established transport.
// Unlike a timeout it means the channel itself is broken.
type IOError struct {
	Op  string
	Err error
}

func (this IOError) Error() string {
	return "transport: " + this.Op + ": " + this.Err.Error()
}

func (this IOError) Unwrap() error {
	return this.Err
}

// dns messages are capped by their 16 bit length field anyway
const maxMsgSize = 0xffff

// connDeadlineRW is the slice of net.Conn the transports actually use;
// narrowed down so tests can plug in scripted fakes
type connDeadlineRW interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// setRecvDeadline arms the read deadline for a single receive
// and spawns a watcher that yanks it early if ctx gets cancelled.
// The returned stop fn must be called once the read completes.
func setRecvDeadline(ctx context.Context, conn connDeadlineRW, timeout time.Duration) (func(), error) {

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	stopCh := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			//	a deadline in the distant past unblocks the pending read
			_ = conn.SetReadDeadline(time.Unix(1, 0))
		case <-stopCh:
		}
	}()

	return func() { close(stopCh) }, nil
}

// recvError sorts a failed read into the error taxonomy:
// context cancellation first, then timeouts, the rest is broken transport
func recvError(ctx context.Context, err error) error {

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return IOError{Op: "recv", Err: err}
}
