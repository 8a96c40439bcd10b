package dnsmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

var ErrInvalidName = errors.New("invalid query name")

const (
	//	RFC 1035 limits: a label tops out at 63 octets,
	//	a full encoded name at 255 including the root label
	maxLabelSize = 63
	maxNameSize  = 255
)

// CheckName verifies that a host name can be encoded as a DNS question name
func CheckName(host string) error {

	name := strings.TrimSuffix(host, ".")
	if name == "" {
		//	bare root is a valid question name
		return nil
	}

	//	wire size: one length octet per label plus the label itself,
	//	terminated by the zero-length root label
	if len(name)+2 > maxNameSize {
		return fmt.Errorf("%w: name too long: %d bytes", ErrInvalidName, len(name)+2)
	}

	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidName)
		} else if len(label) > maxLabelSize {
			return fmt.Errorf("%w: label too long: %d bytes", ErrInvalidName, len(label))
		}
	}

	return nil
}

// QueryTypeFor picks the question type matching the address family of the
// server that's being pinged: AAAA for IPv6 servers, A for everything else
func QueryTypeFor(server net.IP) uint16 {
	if server != nil && server.To4() == nil {
		return dns.TypeAAAA
	}
	return dns.TypeA
}

// BuildQuery encodes a single-question DNS query.
// The RD header bit is set unless the query is iterative.
func BuildQuery(id uint16, host string, qtype uint16, iterate bool) ([]byte, error) {

	if err := CheckName(host); err != nil {
		return nil, err
	}

	msg := dns.Msg{
		MsgHdr: dns.MsgHdr{
			Id:               id,
			RecursionDesired: !iterate,
		},
		Question: []dns.Question{
			{
				Name:   dns.Fqdn(host),
				Qtype:  qtype,
				Qclass: dns.ClassINET,
			},
		},
	}

	buff, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	return buff, nil
}
