package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/maddsua/dnsping/socks"
)

// Proxy points at a SOCKSv5 server to tunnel the probes through
type Proxy struct {
	Addr  string
	Port  int
	Creds *socks.Credentials
}

func (this Proxy) String() string {
	return net.JoinHostPort(this.Addr, fmt.Sprintf("%d", this.Port))
}

const dialTimeout = 10 * time.Second

// Dial opens the transport to a DNS server: a plain UDP socket,
// or a SOCKSv5 CONNECT tunnel when a proxy is set.
//
// Socket and handshake failures both come back as ConnectError;
// handshake errors additionally unwrap to their socks package values.
func Dial(server net.IP, port int, proxy *Proxy) (Conn, error) {

	serverAddr := net.JoinHostPort(server.String(), fmt.Sprintf("%d", port))

	if proxy == nil {

		conn, err := net.DialTimeout("udp", serverAddr, dialTimeout)
		if err != nil {
			return nil, ConnectError{Err: err}
		}

		return &udpConn{conn: conn}, nil
	}

	conn, err := net.DialTimeout("tcp", proxy.String(), dialTimeout)
	if err != nil {
		return nil, ConnectError{Err: err}
	}

	//	the handshake must not hang on a half-dead proxy
	if err := conn.SetDeadline(time.Now().Add(dialTimeout)); err != nil {
		conn.Close()
		return nil, ConnectError{Err: err}
	}

	client := socks.Client{Creds: proxy.Creds}
	if err := client.Handshake(conn, server.String(), port); err != nil {
		conn.Close()
		return nil, ConnectError{Err: err}
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, ConnectError{Err: err}
	}

	return &tcpConn{conn: conn}, nil
}
