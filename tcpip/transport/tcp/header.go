package tcp

import "github.com/nwstack/tcpwin/seqnum"

// Header is the slice of the wire header contract that the transmission
// control core consumes. The codec layer that actually lays out bytes on
// the wire, parses options and computes checksums lives outside this
// package; Header is the seam between the two.
type Header interface {
	// SeqNum returns the header's sequence number field.
	SeqNum() seqnum.Value
	// SetSeqNum overwrites the header's sequence number field. Used when a
	// cumulative ACK trims the left edge of a segment still in flight.
	SetSeqNum(seqnum.Value)
	// HasSYN and HasFIN report whether the corresponding control flag is
	// set. Both consume one unit of sequence space.
	HasSYN() bool
	HasFIN() bool
	// ClearSYN clears the SYN flag. Used by the trim path: once a cumulative
	// ACK has moved past the initial sequence number, the SYN itself has
	// been acknowledged and must not be retransmitted with the remainder of
	// the segment.
	ClearSYN()
	// Timestamp returns the TSval/TSecr carried by the Timestamp option, if
	// present.
	Timestamp() (TimestampOption, bool)
}

// TimestampOption holds the two fields of the TCP Timestamp option (RFC
// 7323): the sender's own clock value (TSval) and the value it is echoing
// back from the peer (TSecr).
type TimestampOption struct {
	Val uint32
	Ecr uint32
}

// SegmentLen returns the sequence-number length of a header carrying
// payloadLen octets of data: the payload plus one unit for each of SYN and
// FIN, per RFC 9293 section 3.4.
func SegmentLen(h Header, payloadLen int) seqnum.Size {
	n := seqnum.Size(payloadLen)
	if h.HasSYN() {
		n++
	}
	if h.HasFIN() {
		n++
	}
	return n
}
