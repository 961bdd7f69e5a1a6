package pdu4go_test

import (
	"testing"

	"github.com/frozenpine/pdu4go"
)

func TestParseIPv4Addr(t *testing.T) {
	addr, err := pdu4go.ParseIPv4Addr("192.168.1.1")
	if err != nil {
		t.Fatal(err)
	}

	if addr != (pdu4go.IPv4Addr{192, 168, 1, 1}) {
		t.Fatal("addr mismatch:", addr)
	}

	if addr.String() != "192.168.1.1" {
		t.Fatal("string mismatch:", addr)
	}

	if _, err = pdu4go.ParseIPv4Addr("fe80::1"); err == nil {
		t.Fatal("expect invalid addr")
	}

	if _, err = pdu4go.ParseIPv4Addr("not-an-addr"); err == nil {
		t.Fatal("expect invalid addr")
	}
}

func TestIPv4AddrText(t *testing.T) {
	addr := pdu4go.IPv4Addr{}

	if err := addr.UnmarshalText([]byte("10.0.0.1")); err != nil {
		t.Fatal(err)
	}

	text, err := addr.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	if string(text) != "10.0.0.1" {
		t.Fatal("text mismatch:", string(text))
	}
}
