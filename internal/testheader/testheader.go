// Package testheader is a minimal stand-in for the wire codec's Header
// implementation. The transmission control core never parses or encodes a
// TCP header itself; it only needs something satisfying tcp.Header, and
// this package is that something for tests and examples.
package testheader

import (
	"github.com/nwstack/tcpwin/seqnum"
	"github.com/nwstack/tcpwin/tcpip/transport/tcp"
)

// Header is a bare-bones tcp.Header. It carries no options other than an
// optional Timestamp, and no flags other than SYN/FIN.
type Header struct {
	Seq      seqnum.Value
	SYN, FIN bool
	TSVal    uint32
	TSEcr    uint32
	HasTSOpt bool
}

func (h *Header) SeqNum() seqnum.Value     { return h.Seq }
func (h *Header) SetSeqNum(v seqnum.Value) { h.Seq = v }
func (h *Header) HasSYN() bool             { return h.SYN }
func (h *Header) HasFIN() bool             { return h.FIN }
func (h *Header) ClearSYN()                { h.SYN = false }

func (h *Header) Timestamp() (tcp.TimestampOption, bool) {
	return tcp.TimestampOption{Val: h.TSVal, Ecr: h.TSEcr}, h.HasTSOpt
}
