package utils

import (
	"errors"
	"io"
)

// ReadBuffN reads exactly n bytes from the reader.
// Short reads are errors: protocol fields are fixed-size and a partial
// field means the peer is gone or speaking something else entirely.
func ReadBuffN(reader io.Reader, n int) ([]byte, error) {

	if n <= 0 {
		return nil, errors.New("buffer size is zero")
	}

	buff := make([]byte, n)
	if _, err := io.ReadFull(reader, buff); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	return buff, nil
}

func ReadByte(reader io.Reader) (byte, error) {
	buff, err := ReadBuffN(reader, 1)
	if err != nil {
		return 0, err
	}
	return buff[0], err
}
