// Package pcaptrace writes a synthetic PCAP trace of a scheduling run,
// one packet per [wfq.Dispatch], so the schedule can be inspected with
// ordinary packet-capture tooling (Wireshark, tshark). This is a pure
// diagnostic; the scheduler itself never imports this package.
//
// Writer is synchronous: the scheduler that drives it does no
// background work of its own, and a diagnostic sink should not be the
// one exception.
package pcaptrace

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/nt-sched/wfq"
)

// Writer appends one synthetic Ethernet/IPv4/TCP frame per dispatched
// packet to a PCAP file. The zero value is invalid; use [NewWriter].
type Writer struct {
	pw     *pcapgo.Writer
	closer io.Closer
	epoch  time.Time
}

// snapLen is large enough that no synthetic frame this package builds
// is ever truncated.
const snapLen = 65536

// NewWriter wraps wc as a PCAP [Writer] and writes the file header to
// it; [Writer.Close] closes wc. epoch is
// the wall-clock time that corresponds to simulated real time zero;
// every [wfq.Dispatch] is stamped at epoch plus its RealStartTime.
func NewWriter(wc io.WriteCloser, epoch time.Time) (*Writer, error) {
	pw := pcapgo.NewWriter(wc)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("pcaptrace: WriteFileHeader: %w", err)
	}
	return &Writer{pw: pw, closer: wc, epoch: epoch}, nil
}

// WriteDispatch serializes d as a synthetic frame and appends it.
func (w *Writer) WriteDispatch(d wfq.Dispatch) error {
	eth := &layers.Ethernet{
		SrcMAC:       syntheticMAC(uint8(d.FlowID), 1),
		DstMAC:       syntheticMAC(uint8(d.FlowID), 2),
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Id:       uint16(d.AppearanceOrder),
		SrcIP:    parseIPv4OrZero(d.SrcIP),
		DstIP:    parseIPv4OrZero(d.DstIP),
		Protocol: layers.IPProtocolTCP,
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(d.SrcPort),
		DstPort: layers.TCPPort(d.DstPort),
		Seq:     uint32(d.AppearanceOrder),
		Window:  8192,
		PSH:     true,
		ACK:     true,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return fmt.Errorf("pcaptrace: SetNetworkLayerForChecksum: %w", err)
	}

	payload := gopacket.Payload(make([]byte, payloadLength(d.Length)))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, payload); err != nil {
		return fmt.Errorf("pcaptrace: SerializeLayers: %w", err)
	}

	ci := gopacket.CaptureInfo{
		Timestamp:     w.epoch.Add(time.Duration(d.RealStartTime) * time.Millisecond),
		CaptureLength: len(buf.Bytes()),
		Length:        len(buf.Bytes()),
	}
	return w.pw.WritePacket(ci, buf.Bytes())
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.closer.Close()
}

// payloadLength caps the synthetic payload so a pathologically large
// packet Length in the trace does not balloon the capture file; only
// the timing and 4-tuple matter for visualization.
func payloadLength(length int64) int {
	const cap = 1400
	if length <= 0 {
		return 0
	}
	if length > cap {
		return cap
	}
	return int(length)
}

func syntheticMAC(flowID uint8, half byte) []byte {
	return []byte{0x02, 0x00, 0x00, 0x00, flowID, half}
}

func parseIPv4OrZero(s string) []byte {
	ip := net.ParseIP(s)
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return net.IPv4zero.To4()
}
