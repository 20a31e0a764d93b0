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
	"sort"

	"github.com/nwstack/tcpwin/seqnum"
)

// SACKBlock is one selective-acknowledgement range the peer reported:
// [Left, Right), with Right exclusive as specified by RFC 2018.
type SACKBlock struct {
	Left  seqnum.Value
	Right seqnum.Value
}

// HandleSack marks every retransmit-queue segment wholly covered by one of
// blocks, and returns every segment still unmarked (in queue order) as the
// set the caller should retransmit. SACK is advisory only: no segment is
// ever removed from the queue here, since only a cumulative ACK retires
// one.
//
// Coverage is strict: a segment is covered only if its whole span lies
// inside a block, with the block's right edge treated as exclusive, per
// RFC 2018. The test is a strict "<" between the segment's rightEdge and
// the block's right edge, so a segment whose rightEdge equals a block's
// right edge is NOT covered, even though both edges are exclusive: a block
// must extend at least one octet past the segment's rightEdge to cover it.
func (w *Window) HandleSack(blocks []SACKBlock) []Emission {
	sorted := make([]SACKBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Right.LessThanEq(b.Left) {
			continue // Malformed block: silently ignored, matches no segment.
		}
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Left.LessThan(sorted[j].Left)
	})

	var segs []*segment
	w.queue.Ascend(func(seg *segment) bool {
		segs = append(segs, seg)
		return true
	})

	bi := 0
	for _, seg := range segs {
		for bi < len(sorted) && !seg.leftEdge().LessThan(sorted[bi].Right) {
			bi++
		}
		if bi >= len(sorted) {
			break
		}
		// Blocks may overlap, so any later block that also starts at or
		// before the segment can cover it too.
		for j := bi; j < len(sorted) && sorted[j].Left.LessThanEq(seg.leftEdge()); j++ {
			if seg.rightEdge.LessThan(sorted[j].Right) {
				seg.setSACKed(true)
				break
			}
		}
	}

	var retransmit []Emission
	for _, seg := range segs {
		if !seg.sacked() {
			retransmit = append(retransmit, Emission{Header: seg.header, Body: seg.body})
		}
	}
	return retransmit
}
