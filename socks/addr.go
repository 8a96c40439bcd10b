package socks

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/maddsua/dnsping/utils"
)

const (
	addrTypeIPv4   = byte(0x01)
	addrTypeDomain = byte(0x03)
	addrTypeIPv6   = byte(0x04)
)

// packAddr encodes a destination for a CONNECT request.
// IP literals are sent in their native form, anything else goes out
// as a domain name and is left for the proxy to resolve.
func packAddr(host string, port int) ([]byte, error) {

	if port <= 0 || port > 0xffff {
		return nil, fmt.Errorf("invalid port number: %d", port)
	}

	var buff []byte

	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			buff = append(buff, addrTypeIPv4)
			buff = append(buff, v4...)
		} else {
			buff = append(buff, addrTypeIPv6)
			buff = append(buff, ip.To16()...)
		}
	} else {

		if host == "" || len(host) > 0xff {
			return nil, fmt.Errorf("invalid domain length: %d", len(host))
		}

		buff = append(buff, addrTypeDomain, byte(len(host)))
		buff = append(buff, host...)
	}

	return append(buff, byte(port>>8), byte(port&0xff)), nil
}

// readAddr consumes an address:port pair from a server reply
func readAddr(reader io.Reader) (string, error) {

	addrType, err := utils.ReadByte(reader)
	if err != nil {
		return "", err
	}

	var addrLen uint8
	var addrIsIP bool

	switch addrType {

	case addrTypeIPv4:
		addrLen = net.IPv4len
		addrIsIP = true

	case addrTypeIPv6:
		addrLen = net.IPv6len
		addrIsIP = true

	case addrTypeDomain:
		if addrLen, err = utils.ReadByte(reader); err != nil {
			return "", err
		} else if addrLen == 0 {
			return "", fmt.Errorf("zero length domain")
		}

	default:
		return "", fmt.Errorf("invalid addr type: %v", addrType)
	}

	addrBuff, err := utils.ReadBuffN(reader, int(addrLen))
	if err != nil {
		return "", err
	}

	portBuff, err := utils.ReadBuffN(reader, 2)
	if err != nil {
		return "", err
	}

	var hostname string
	if addrIsIP {
		hostname = net.IP(addrBuff).String()
	} else {
		hostname = string(addrBuff)
	}

	port := strconv.Itoa((int(portBuff[0]) << 8) | int(portBuff[1]))

	return net.JoinHostPort(hostname, port), nil
}
