// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tcp

import (
	"time"

	"github.com/nwstack/tcpwin/seqnum"
)

// segment is one outstanding transmission sitting in the retransmit queue.
// Its shape is immutable except at the left edge: a cumulative ACK that
// falls inside a segment trims it in place rather than replacing it.
type segment struct {
	header Header

	// rightEdge is the sequence number of the first octet after this
	// segment's contribution. It is cached at construction time and never
	// recomputed, since trimming the left edge does not move it.
	rightEdge seqnum.Value

	// body is the payload. Trimming the left edge drops a prefix of body by
	// reslicing, not copying: the underlying array may be shared with other
	// owners of the same send buffer.
	body []byte

	// sentAt is the time of original transmission. It is cleared by a
	// retransmit so the segment no longer yields an RTT sample (Karn's
	// algorithm).
	sentAt    time.Time
	hasSentAt bool

	// sack is true once the segment has been covered by a SACK block the
	// peer has reported. Cleared only by a retransmit.
	sack bool
}

func newSegment(h Header, body []byte, rightEdge seqnum.Value, now time.Time) *segment {
	return &segment{
		header:    h,
		rightEdge: rightEdge,
		body:      body,
		sentAt:    now,
		hasSentAt: true,
	}
}

// leftEdge is the sequence number of the segment's first octet.
func (s *segment) leftEdge() seqnum.Value {
	return s.header.SeqNum()
}

// setLeftEdge advances the segment's left edge to sn, dropping whatever
// prefix of the segment sn has swallowed. If sn does not strictly advance
// past the current left edge the segment is left unchanged; this method is
// only ever called with a sequence number known to fall inside the segment.
func (s *segment) setLeftEdge(sn seqnum.Value) {
	if sn.LessThanEq(s.leftEdge()) {
		return
	}
	length := int(s.leftEdge().Size(sn))
	if s.header.HasSYN() {
		// The SYN occupies the first sequence unit; once it is trimmed away
		// it must never be retransmitted with the remaining bytes.
		s.header.ClearSYN()
		length--
	}
	if length > 0 {
		if length > len(s.body) {
			length = len(s.body)
		}
		s.body = s.body[length:]
	}
	s.header.SetSeqNum(sn)
}

// logicalLen is the segment's footprint in sequence-number space: payload
// bytes plus one for each of SYN and FIN still set.
func (s *segment) logicalLen() seqnum.Size {
	return SegmentLen(s.header, len(s.body))
}

func (s *segment) clearSentAt() {
	s.hasSentAt = false
	s.sentAt = time.Time{}
}

func (s *segment) setSACKed(v bool) {
	s.sack = v
}

func (s *segment) sacked() bool {
	return s.sack
}
