package utils_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/maddsua/dnsping/utils"
)

func TestReadBuffN_1(t *testing.T) {

	reader := bytes.NewReader([]byte{0x05, 0x00, 0x01, 0x02})

	buff, err := utils.ReadBuffN(reader, 2)
	if err != nil {
		t.Fatal("err", err)
	} else if !bytes.Equal(buff, []byte{0x05, 0x00}) {
		t.Fatal("expected: [5 0] got:", buff)
	}
}

func TestReadBuffN_2(t *testing.T) {

	reader := bytes.NewReader([]byte{0x05})

	if _, err := utils.ReadBuffN(reader, 4); err != io.EOF {
		t.Fatal("expected: io.EOF got:", err)
	}
}

func TestReadByte(t *testing.T) {

	reader := bytes.NewReader([]byte{0xff})

	val, err := utils.ReadByte(reader)
	if err != nil {
		t.Fatal("err", err)
	} else if val != 0xff {
		t.Fatal("expected: 0xff got:", val)
	}
}
