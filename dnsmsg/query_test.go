package dnsmsg_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/maddsua/dnsping/dnsmsg"
	"github.com/miekg/dns"
)

func TestBuildQuery_Header(t *testing.T) {

	buff, err := dnsmsg.BuildQuery(0x1234, "www.google.com", dns.TypeA, false)
	if err != nil {
		t.Fatal("err", err)
	}

	var msg dns.Msg
	if err := msg.Unpack(buff); err != nil {
		t.Fatal("unpack:", err)
	}

	if msg.Id != 0x1234 {
		t.Fatal("expected id: 0x1234 got:", msg.Id)
	} else if !msg.RecursionDesired {
		t.Fatal("expected the RD bit to be set")
	} else if len(msg.Question) != 1 {
		t.Fatal("expected a single question, got:", len(msg.Question))
	}

	question := msg.Question[0]
	if question.Name != "www.google.com." {
		t.Fatal("unexpected question name:", question.Name)
	} else if question.Qtype != dns.TypeA {
		t.Fatal("unexpected question type:", question.Qtype)
	} else if question.Qclass != dns.ClassINET {
		t.Fatal("unexpected question class:", question.Qclass)
	}
}

func TestBuildQuery_Iterative(t *testing.T) {

	buff, err := dnsmsg.BuildQuery(1, "example.com", dns.TypeA, true)
	if err != nil {
		t.Fatal("err", err)
	}

	var msg dns.Msg
	if err := msg.Unpack(buff); err != nil {
		t.Fatal("unpack:", err)
	}

	if msg.RecursionDesired {
		t.Fatal("expected the RD bit to be cleared for an iterative query")
	}
}

func TestBuildQuery_LabelTooLong(t *testing.T) {

	host := strings.Repeat("a", 64) + ".example.com"

	if _, err := dnsmsg.BuildQuery(1, host, dns.TypeA, false); !errors.Is(err, dnsmsg.ErrInvalidName) {
		t.Fatal("expected: ErrInvalidName got:", err)
	}
}

func TestBuildQuery_NameTooLong(t *testing.T) {

	//	64 labels of "abc." add up way past the 255 byte cap
	host := strings.TrimSuffix(strings.Repeat("abc.", 64), ".")

	if _, err := dnsmsg.BuildQuery(1, host, dns.TypeA, false); !errors.Is(err, dnsmsg.ErrInvalidName) {
		t.Fatal("expected: ErrInvalidName got:", err)
	}
}

func TestBuildQuery_EmptyLabel(t *testing.T) {

	if _, err := dnsmsg.BuildQuery(1, "www..com", dns.TypeA, false); !errors.Is(err, dnsmsg.ErrInvalidName) {
		t.Fatal("expected: ErrInvalidName got:", err)
	}
}

func TestQueryTypeFor(t *testing.T) {

	if qtype := dnsmsg.QueryTypeFor(mustParseIP(t, "8.8.8.8")); qtype != dns.TypeA {
		t.Fatal("expected: A got:", qtype)
	}

	if qtype := dnsmsg.QueryTypeFor(mustParseIP(t, "2001:4860:4860::8888")); qtype != dns.TypeAAAA {
		t.Fatal("expected: AAAA got:", qtype)
	}
}
