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

import "time"

// tsClock is a monotonically advancing 32-bit counter used to populate the
// TCP Timestamp option (RFC 7323) and to compute RTT samples from the
// values the peer echoes back. It is advanced independently of any one
// segment, so a single clock value can be shared across every outstanding
// segment in a connection.
type tsClock struct {
	value      uint32
	lastUpdate time.Time
}

// newTSClock constructs a clock already reading value at now.
func newTSClock(value uint32, now time.Time) tsClock {
	return tsClock{value: value, lastUpdate: now}
}

// update advances the clock to now. The counter only ever moves forward: if
// now precedes the last observed time (a caller presenting events out of
// order), the clock is returned unchanged, value and lastUpdate alike, so a
// subsequent correctly-ordered call measures its delta from the last
// in-order time.
func (c tsClock) update(cfg Config, now time.Time) tsClock {
	if now.Before(c.lastUpdate) {
		return c
	}
	dt := now.Sub(c.lastUpdate).Seconds()
	inc := uint32(dt * cfg.TSClockFrequency)
	return tsClock{value: c.value + inc, lastUpdate: now}
}

// measureRTT returns the elapsed time represented by the gap between the
// clock's current value and echoedValue, a TSecr the peer returned. The
// caller must guarantee echoedValue precedes or equals the clock's value in
// the 32-bit modular sense; violating that contract is undefined.
func measureRTT(cfg Config, echoedValue uint32, c tsClock) time.Duration {
	delta := c.value - echoedValue
	return time.Duration(float64(delta) / cfg.TSClockFrequency * float64(time.Second))
}
