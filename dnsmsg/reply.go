package dnsmsg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/miekg/dns"
)

var ErrMalformedReply = errors.New("malformed dns reply")

// dns message header size, RFC 1035 §4.1.1
const headerSize = 12

// ReplyID extracts the transaction id from a raw message.
// Returns false if the buffer is too short to carry one.
func ReplyID(buff []byte) (uint16, bool) {
	if len(buff) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(buff), true
}

// CheckReply performs the minimal validity check on a raw reply:
// full header present, message parseable and the QR bit set
func CheckReply(buff []byte) error {

	if len(buff) < headerSize {
		return fmt.Errorf("%w: truncated header: %d bytes", ErrMalformedReply, len(buff))
	}

	var msg dns.Msg
	if err := msg.Unpack(buff); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if !msg.Response {
		return fmt.Errorf("%w: not a response", ErrMalformedReply)
	}

	return nil
}
