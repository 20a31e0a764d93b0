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

// RetransmitTimeout is called by the enclosing stack when its externally
// owned retransmit timer fires. It resends the oldest outstanding segment
// and invalidates SACK state that can no longer be trusted: the receiver's
// acceptance of the resent bytes may change which blocks it reports next.
//
// The Timestamp Clock is deliberately not advanced here. Doing so would let
// the time spent waiting for the timer leak into the next RTT sample.
func (w *Window) RetransmitTimeout() (Emission, bool) {
	if w.queue.Len() == 0 {
		return Emission{}, false
	}

	head, _ := w.queue.Min()
	emission := Emission{Header: head.header, Body: head.body}

	w.queue.Ascend(func(seg *segment) bool {
		seg.setSACKed(false)
		return true
	})
	// Clearing sentAt on the head alone, not on every queued segment, is
	// deliberate: only the head is being resent here, and Karn's algorithm
	// only disqualifies the segment whose transmission time is now
	// ambiguous.
	head.clearSentAt()

	return emission, true
}
