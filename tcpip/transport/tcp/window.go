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

// Package tcp implements the sender-side transmission control core: the
// bookkeeping of the peer's receive window, the local retransmit queue, RTT
// measurement via the Timestamp option, and the processing of cumulative
// and selective acknowledgements. It owns none of the wire codec, the
// receive-side reassembly window, the socket state machine, or congestion
// control; those are separate layers that read and write Window state
// through this package's entry points.
package tcp

import (
	"time"

	"github.com/google/btree"
	"github.com/nwstack/tcpwin/seqnum"
)

// btreeDegree is the branching factor of the retransmit queue's backing
// B-tree. Retransmit queues are small (bounded by the send window divided
// by minimum segment size), so the exact degree has little effect on this
// workload; 32 is a reasonable default in that regime.
const btreeDegree = 32

func segmentLess(a, b *segment) bool {
	return a.leftEdge().LessThan(b.leftEdge())
}

// Window holds the Send Sequence Space described by RFC 9293 section 3.3.1
// together with the retransmit queue and the Timestamp Clock that samples
// RTT from it. A Window is owned by exactly one connection; the enclosing
// stack is responsible for serializing all calls into a given Window's
// entry points (queueSegment, ackSegment, retransmitTimeout, handleSack).
// Every entry point updates the Window in place and returns an optional
// emission or result: there is no hidden state and no internal
// concurrency.
type Window struct {
	// queue is the retransmit queue, ordered by leftEdge. Segments here
	// span [SND.UNA, SND.NXT) and never overlap, though gaps are possible
	// once a partial ACK trims the oldest entry away from its neighbours.
	queue *btree.BTreeG[*segment]

	sndNxt seqnum.Value
	sndWnd seqnum.Size
	// sndAvail is the currently usable window. It is maintained
	// incrementally rather than recomputed from sndWnd-(sndNxt-sndUna) on
	// every read, because a window update from the peer can transiently
	// drive it negative before the next ACK restores it.
	sndAvail int64

	clock tsClock
}

// HeaderBuilder constructs the header for a segment about to be queued. It
// receives the freshly advanced Timestamp option value and the sequence
// number the core is about to assign (SND.NXT before this call), and
// returns the header to emit. It is the caller's codec layer, not this
// package, that knows how to lay out SYN/FIN/options on the wire.
type HeaderBuilder func(ts uint32, seq seqnum.Value) Header

// Emission is an optional side effect of an entry point: a segment (or bare
// control header) the caller should put on the wire, and for queueSegment
// alone, whether the retransmit timer should now be started.
type Emission struct {
	StartRTO bool
	Header   Header
	Body     []byte
}

// NewWindow constructs a Window with no outstanding segments.
func NewWindow(sndNxt seqnum.Value, sndWnd seqnum.Size, tsValue uint32, now time.Time) *Window {
	return &Window{
		queue:    btree.NewG(btreeDegree, segmentLess),
		sndNxt:   sndNxt,
		sndWnd:   sndWnd,
		sndAvail: int64(sndWnd),
		clock:    newTSClock(tsValue, now),
	}
}

// SndNxt is SND.NXT: the next sequence number to assign to new data.
func (w *Window) SndNxt() seqnum.Value { return w.sndNxt }

// SndUna is SND.UNA: the left edge of the retransmit queue, or SND.NXT if
// the queue is empty.
func (w *Window) SndUna() seqnum.Value {
	if w.queue.Len() == 0 {
		return w.sndNxt
	}
	head, _ := w.queue.Min()
	return head.leftEdge()
}

// SndWnd is SND.WND: the last window the peer advertised.
func (w *Window) SndWnd() seqnum.Size { return w.sndWnd }

// SndAvail is SND.AVAIL: the currently usable window. It can be transiently
// negative immediately after the peer shrinks its advertised window.
func (w *Window) SndAvail() int64 { return w.sndAvail }

// NullWindow reports whether the retransmit queue is empty.
func (w *Window) NullWindow() bool { return w.queue.Len() == 0 }

// TSValue exposes the Timestamp Clock's current counter, mainly for tests
// and debugging; the core never needs to read it outside queueSegment and
// ackSegment.
func (w *Window) TSValue() uint32 { return w.clock.value }

// SetSndNxt assigns a new SND.NXT. It only succeeds, and only then takes
// effect, when the retransmit queue is empty: reassigning sequence space
// out from under outstanding segments would corrupt the queue's ordering
// invariant. Used during handshake and reset.
func (w *Window) SetSndNxt(n seqnum.Value) bool {
	if w.queue.Len() != 0 {
		return false
	}
	w.sndNxt = n
	return true
}

// UpdateSndWnd records a newly advertised peer window, adjusting SND.AVAIL
// by the delta. A shrinking window can drive SND.AVAIL negative; callers
// must tolerate that rather than clamp it, since clamping would silently
// grant back capacity the peer never offered.
func (w *Window) UpdateSndWnd(wnd seqnum.Size) {
	w.sndAvail += int64(wnd) - int64(w.sndWnd)
	w.sndWnd = wnd
}

// FlushWindow empties the retransmit queue without touching SND.NXT,
// SND.WND, or the clock. Used on connection abort.
func (w *Window) FlushWindow() {
	w.queue = btree.NewG(btreeDegree, segmentLess)
}

// QueueSegment is the entry point through which the user hands new bytes
// to the core. It always advances the Timestamp Clock to now and invokes
// build, even along paths that otherwise leave the Window untouched: the
// clock samples wall-clock time, not window mutation.
func (w *Window) QueueSegment(cfg Config, now time.Time, build HeaderBuilder, payload []byte) (Emission, bool) {
	w.clock = w.clock.update(cfg, now)
	h := build(w.clock.value, w.sndNxt)

	if SegmentLen(h, len(payload)) == 0 {
		// A pure control segment, such as a bare ACK: nothing to queue, and
		// nothing about SND.NXT/SND.AVAIL changes. This lets callers route
		// control traffic through the same API as data.
		return Emission{Header: h, Body: nil}, true
	}

	if w.sndAvail <= 0 {
		// Window is closed; the caller must buffer and retry once an ACK
		// reopens it.
		return Emission{}, false
	}

	n := len(payload)
	if int64(n) > w.sndAvail {
		n = int(w.sndAvail)
	}
	body := payload[:n]

	length := SegmentLen(h, len(body))
	rightEdge := w.sndNxt.Add(length)
	seg := newSegment(h, body, rightEdge, now)

	startRTO := w.queue.Len() == 0
	w.queue.ReplaceOrInsert(seg)
	w.sndAvail -= int64(length)
	w.sndNxt = w.sndNxt.Add(length)

	return Emission{StartRTO: startRTO, Header: h, Body: body}, true
}
