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

// AckResult is the optional output of AckSegment: whether the retransmit
// queue emptied out as a result, and an RTT sample if one could be
// extracted from the acknowledged segments.
type AckResult struct {
	QueueEmpty bool
	RTT        time.Duration
	HasRTT     bool
}

// AckSegment processes a cumulative ACK. An out-of-window ack (one outside
// [SND.UNA, SND.NXT]) is rejected outright: the Window is returned
// unchanged and ok is false. Otherwise the retransmit queue is walked from
// its head, fully-acked segments are retired, a segment straddling ack is
// trimmed in place, and an RTT sample is extracted per the rules in
// measureRTT's caller below.
func (w *Window) AckSegment(cfg Config, now time.Time, ack seqnum.Value) (AckResult, bool) {
	sndUna := w.SndUna()
	if !sndUna.LessThanEq(ack) || !ack.LessThanEq(w.sndNxt) {
		return AckResult{}, false
	}

	// Ascend only reads the queue; mutating a btree mid-traversal is not
	// safe, so the walk just collects what to do and the queue is edited
	// afterward.
	var acked []*segment
	var partial *segment
	w.queue.Ascend(func(seg *segment) bool {
		switch {
		case seg.rightEdge.LessThanEq(ack):
			acked = append(acked, seg)
			return true
		case seg.leftEdge().LessThanEq(ack):
			partial = seg
			return false
		default:
			return false
		}
	})

	for _, seg := range acked {
		w.queue.Delete(seg)
	}
	if partial != nil {
		w.queue.Delete(partial)
		partial.setLeftEdge(ack)
		w.queue.ReplaceOrInsert(partial)
	}

	w.sndAvail += int64(sndUna.Size(ack))
	w.clock = w.clock.update(cfg, now)

	result := AckResult{QueueEmpty: w.queue.Len() == 0}
	if n := len(acked); n > 0 {
		// acked is in ascending leftEdge order, i.e. oldest to newest; the
		// segments never overlap, so the last entry also carries the
		// highest rightEdge and is therefore the "most recently acked"
		// segment the RTT rules are stated in terms of.
		newest := acked[n-1]
		if ts, ok := newest.header.Timestamp(); ok {
			result.RTT = measureRTT(cfg, ts.Ecr, w.clock)
			result.HasRTT = true
		} else {
			var oldestSentAt time.Time
			found := false
			for _, seg := range acked {
				if !seg.hasSentAt {
					continue // Retransmitted: Karn's algorithm excludes it.
				}
				if !found || seg.sentAt.Before(oldestSentAt) {
					oldestSentAt = seg.sentAt
					found = true
				}
			}
			if found {
				result.RTT = now.Sub(oldestSentAt)
				result.HasRTT = true
			}
		}
	}

	return result, true
}
