package socks

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/maddsua/dnsping/utils"
)

const (
	protoVersion5 = byte(0x05)
	protoReserved = byte(0x00)
)

const cmdConnect = byte(0x01)

type AuthMethod byte

// Reference: https://www.iana.org/assignments/socks-methods/socks-methods.xhtml
const (
	AuthMethodNone         = AuthMethod(0x00)
	AuthMethodPassword     = AuthMethod(0x02)
	AuthMethodUnacceptable = AuthMethod(0xff)
)

type Reply byte

const (
	ReplyOk                  = Reply(0x00)
	ReplyErrGeneric          = Reply(0x01)
	ReplyErrConnNotAllowed   = Reply(0x02)
	ReplyErrNetUnreachable   = Reply(0x03)
	ReplyErrHostUnreachable  = Reply(0x04)
	ReplyErrConnRefused      = Reply(0x05)
	ReplyErrTtlExpired       = Reply(0x06)
	ReplyErrCmdNotSupported  = Reply(0x07)
	ReplyErrAddrNotSupported = Reply(0x08)
)

func (this Reply) String() string {
	switch this {
	case ReplyOk:
		return "succeeded"
	case ReplyErrGeneric:
		return "general server failure"
	case ReplyErrConnNotAllowed:
		return "connection not allowed by ruleset"
	case ReplyErrNetUnreachable:
		return "network unreachable"
	case ReplyErrHostUnreachable:
		return "host unreachable"
	case ReplyErrConnRefused:
		return "connection refused"
	case ReplyErrTtlExpired:
		return "ttl expired"
	case ReplyErrCmdNotSupported:
		return "command not supported"
	case ReplyErrAddrNotSupported:
		return "address type not supported"
	default:
		return fmt.Sprintf("unknown reply code 0x%02x", byte(this))
	}
}

var (
	ErrUnsupportedMethod = errors.New("socks v5: no acceptable auth method")
	ErrAuthFailed        = errors.New("socks v5: password auth rejected")
)

// ProxyRefusedError carries the non-ok reply code of a failed CONNECT
type ProxyRefusedError struct {
	Reply Reply
}

func (this ProxyRefusedError) Error() string {
	return "socks v5: connect refused: " + this.Reply.String()
}

type Credentials struct {
	Username string
	Password string
}

type State int

const (
	StateInit State = iota
	StateGreetingSent
	StateMethodChosen
	StateAuthSent
	StateAuthResult
	StateConnectSent
	StateConnected
)

func (this State) String() string {
	switch this {
	case StateInit:
		return "init"
	case StateGreetingSent:
		return "greeting_sent"
	case StateMethodChosen:
		return "method_chosen"
	case StateAuthSent:
		return "auth_sent"
	case StateAuthResult:
		return "auth_result"
	case StateConnectSent:
		return "connect_sent"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(this))
	}
}

// Client performs the connecting side of the SOCKSv5 exchange.
// A zero Client offers anonymous access only; set Creds to also offer
// username/password auth (RFC 1929).
//
// The handshake is a linear state machine; the client stops at the first
// protocol violation and State() reports how far it got.
type Client struct {
	Creds *Credentials

	state State
}

func (this *Client) State() State {
	return this.state
}

// Handshake negotiates a relayed TCP tunnel to dstHost:dstPort over conn.
// As per: https://datatracker.ietf.org/doc/html/rfc1928
//
// On success conn carries the tunnel and the client is in StateConnected.
// Deadlines are the caller's business: set them on conn beforehand.
func (this *Client) Handshake(conn net.Conn, dstHost string, dstPort int) error {

	this.state = StateInit

	method, err := this.greet(conn)
	if err != nil {
		return err
	}

	slog.Debug("SOCKS V5: Method chosen",
		slog.Int("method", int(method)),
		slog.String("proxy_addr", conn.RemoteAddr().String()))

	if method == AuthMethodPassword {
		if err := this.authenticate(conn); err != nil {
			return err
		}
	}

	if err := this.connect(conn, dstHost, dstPort); err != nil {
		return err
	}

	this.state = StateConnected

	slog.Debug("SOCKS V5: Tunnel established",
		slog.String("proxy_addr", conn.RemoteAddr().String()),
		slog.String("remote", net.JoinHostPort(dstHost, fmt.Sprintf("%d", dstPort))))

	return nil
}

func (this *Client) greet(conn net.Conn) (AuthMethod, error) {

	methods := []byte{byte(AuthMethodNone)}
	if this.Creds != nil {
		methods = append(methods, byte(AuthMethodPassword))
	}

	greeting := append([]byte{protoVersion5, byte(len(methods))}, methods...)
	if _, err := conn.Write(greeting); err != nil {
		return 0, fmt.Errorf("socks v5: failed to send greeting: %v", err)
	}

	this.state = StateGreetingSent

	buff, err := utils.ReadBuffN(conn, 2)
	if err != nil {
		return 0, fmt.Errorf("socks v5: failed to read method selection: %v", err)
	}

	if buff[0] != protoVersion5 {
		return 0, fmt.Errorf("socks v5: unexpected protocol version: %v", buff[0])
	}

	method := AuthMethod(buff[1])

	switch method {
	case AuthMethodNone:
	case AuthMethodPassword:
		if this.Creds == nil {
			return 0, ErrUnsupportedMethod
		}
	default:
		//	covers the reserved 0xff "no acceptable methods" value
		//	along with anything else we never offered
		return 0, ErrUnsupportedMethod
	}

	this.state = StateMethodChosen

	return method, nil
}

const (
	passwordAuthVersion = byte(0x01)
	passwordAuthOk      = byte(0x00)
)

// Username/password sub-negotiation as per RFC 1929
func (this *Client) authenticate(conn net.Conn) error {

	uname, passwd := this.Creds.Username, this.Creds.Password
	if len(uname) > 0xff || len(passwd) > 0xff {
		return errors.New("socks v5: credentials exceed 255 bytes")
	}

	req := append([]byte{passwordAuthVersion, byte(len(uname))}, uname...)
	req = append(req, byte(len(passwd)))
	req = append(req, passwd...)

	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("socks v5: failed to send credentials: %v", err)
	}

	this.state = StateAuthSent

	buff, err := utils.ReadBuffN(conn, 2)
	if err != nil {
		return fmt.Errorf("socks v5: failed to read auth status: %v", err)
	}

	if buff[0] != passwordAuthVersion {
		return fmt.Errorf("socks v5: unexpected auth version: %v", buff[0])
	}

	this.state = StateAuthResult

	if buff[1] != passwordAuthOk {
		return ErrAuthFailed
	}

	return nil
}

func (this *Client) connect(conn net.Conn, dstHost string, dstPort int) error {

	addrBuff, err := packAddr(dstHost, dstPort)
	if err != nil {
		return fmt.Errorf("socks v5: invalid destination: %v", err)
	}

	req := append([]byte{protoVersion5, cmdConnect, protoReserved}, addrBuff...)
	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("socks v5: failed to send connect request: %v", err)
	}

	this.state = StateConnectSent

	buff, err := utils.ReadBuffN(conn, 3)
	if err != nil {
		return fmt.Errorf("socks v5: failed to read connect reply: %v", err)
	}

	if buff[0] != protoVersion5 {
		return fmt.Errorf("socks v5: unexpected protocol version: %v", buff[0])
	}

	if reply := Reply(buff[1]); reply != ReplyOk {
		return ProxyRefusedError{Reply: reply}
	}

	//	the bound address is of no use to a CONNECT client,
	//	but it still has to be drained off the wire
	if _, err := readAddr(conn); err != nil {
		return fmt.Errorf("socks v5: failed to read bound address: %v", err)
	}

	return nil
}
