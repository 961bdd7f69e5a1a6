package pcap

import (
	"context"
	"io"
	"net"
	"regexp"
	"time"

	"github.com/frozenpine/pool"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	libpcap "github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frozenpine/pdu4go"
	pduerr "github.com/frozenpine/pdu4go/errors"
)

var (
	dataSourcePattern = regexp.MustCompile(`^(?P<proto>pcap|file)://(?P<source>.*)$`)
)

// PDUHandler consumes one parsed layer chain per captured packet.
// The chain owns its own storage, so the handler may retain it past
// the call.
type PDUHandler func(ts time.Time, ip *pdu4go.IP) error

func CreateHandler(dataSrc string) (handle *libpcap.Handle, err error) {
	srcMatch := dataSourcePattern.FindStringSubmatch(dataSrc)
	if srcMatch == nil {
		return nil, errors.New("invalid data source: " + dataSrc)
	}

	var proto, source string

	for idx, name := range dataSourcePattern.SubexpNames() {
		switch name {
		case "proto":
			proto = srcMatch[idx]
		case "source":
			source = srcMatch[idx]
		}
	}

	// Find inteface name if source is an IP address
	if ip, err := net.ResolveIPAddr("ip", source); err == nil {
		ifaceList, err := libpcap.FindAllDevs()
		if err != nil {
			return nil, errors.WithStack(err)
		}

	FIND_IFACE:
		for _, iface := range ifaceList {
			for _, addr := range iface.Addresses {
				if addr.IP.Equal(ip.IP) {
					source = iface.Name
					break FIND_IFACE
				}
			}
		}
	}

	switch proto {
	case "pcap":
		if handle, err = libpcap.OpenLive(source, 65535, true, time.Hour); err != nil {
			return nil, errors.WithStack(err)
		}
	case "file":
		if handle, err = libpcap.OpenOffline(source); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.New("unknown pcap protocol: " + proto)
	}

	return
}

// StartCapture parses every captured IPv4 packet into a PDU chain and
// hands it to fn. Recoverable handler errors are logged and skipped;
// anything else stops the capture.
func StartCapture(
	ctx context.Context, handler *libpcap.Handle,
	filter string, fn PDUHandler,
) error {
	if err := handler.SetBPFFilter(filter); err != nil {
		return errors.WithStack(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	scratch := make([]byte, pool.MaxBytesSize)

	packets := gopacket.NewPacketSource(handler, handler.LinkType()).Packets()

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkg := <-packets:
			if pkg == nil {
				return nil
			}

			if fn == nil {
				continue
			}

			ipLayer, ok := pkg.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
			if !ok {
				logrus.Debug("captured packet is not a valid IPv4 packet")
				continue
			}

			size := len(ipLayer.Contents) + len(ipLayer.Payload)
			if size > len(scratch) {
				pool.PutByteSlice(scratch)
				scratch = make([]byte, size*2)
			}

			used := copy(scratch, ipLayer.Contents)
			used += copy(scratch[used:], ipLayer.Payload)

			ip, err := pdu4go.IPFromBytes(scratch[:used])
			if err != nil {
				logrus.WithError(err).Warn("dropping malformed packet")
				continue
			}

			if err := fn(pkg.Metadata().Timestamp, ip); err != nil {
				if err == io.EOF {
					return nil
				}

				if pduerr.IsRecoverableError(err) {
					logrus.WithError(err).Warnf(
						"pdu handler failed: %s", ip,
					)
					continue
				}

				return err
			}
		}
	}
}
