package pcap_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frozenpine/pdu4go"
	"github.com/frozenpine/pdu4go/pcap"
)

func TestCaptureFile(t *testing.T) {
	source := "ipv4_sample.pcap"

	if _, err := os.Stat(source); err != nil {
		t.Skip("no sample capture file:", err)
	}

	handler, err := pcap.CreateHandler("file://" + source)
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	pduHandler := func(ts time.Time, ip *pdu4go.IP) error {
		count++

		t.Logf("%s %s", ts, ip)

		if inner := ip.InnerPDU(); inner != nil {
			t.Logf("  payload: %s %d bytes", inner.Tag(), inner.TotalSize())
		}

		return nil
	}

	if err := pcap.StartCapture(
		context.TODO(), handler, "ip", pduHandler,
	); err != nil {
		t.Fatal(err)
	}

	t.Log("captured packets:", count)
}
