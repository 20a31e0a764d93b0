package tcp_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nwstack/tcpwin/internal/testheader"
	"github.com/nwstack/tcpwin/seqnum"
	"github.com/nwstack/tcpwin/tcpip/transport/tcp"
)

func mustConfig(t *testing.T, freq float64) tcp.Config {
	t.Helper()
	cfg, err := tcp.NewConfig(freq)
	if err != nil {
		t.Fatalf("NewConfig(%v): %v", freq, err)
	}
	return cfg
}

func buildDataHeader(seq seqnum.Value) tcp.HeaderBuilder {
	return func(ts uint32, sndNxt seqnum.Value) tcp.Header {
		return &testheader.Header{Seq: sndNxt, TSVal: ts, HasTSOpt: true}
	}
}

// S1: simple send and ack, with a timestamp-derived RTT sample.
func TestQueueSegmentThenAckS1(t *testing.T) {
	cfg := mustConfig(t, 1000) // 1000 ticks/second, i.e. 1ms granularity.
	t0 := time.Unix(1700000000, 0)

	w := tcp.NewWindow(1000, 4000, 5000, t0)

	payload := make([]byte, 1460)
	emission, ok := w.QueueSegment(cfg, t0.Add(10*time.Millisecond), buildDataHeader(0), payload)
	if !ok {
		t.Fatal("QueueSegment did not emit")
	}
	if !emission.StartRTO {
		t.Error("StartRTO should be true: queue was empty before this send")
	}
	if emission.Header.SeqNum() != 1000 {
		t.Errorf("seq = %d, want 1000", emission.Header.SeqNum())
	}
	if w.SndNxt() != 2460 {
		t.Errorf("SndNxt = %d, want 2460", w.SndNxt())
	}

	ts, _ := emission.Header.Timestamp()
	hdr := emission.Header.(*testheader.Header)
	hdr.TSEcr = ts.Val // Peer echoes our TSval back as TSecr.

	result, ok := w.AckSegment(cfg, t0.Add(100*time.Millisecond), 2460)
	if !ok {
		t.Fatal("AckSegment rejected an in-window ack")
	}
	if !result.QueueEmpty {
		t.Error("queue should be empty after ack of sndNxt")
	}
	if !result.HasRTT {
		t.Error("expected an RTT sample from the timestamp echo")
	}
	if w.SndUna() != 2460 {
		t.Errorf("SndUna = %d, want 2460", w.SndUna())
	}
}

// S6: a fully closed window blocks queueSegment without touching state.
func TestQueueSegmentZeroWindowS6(t *testing.T) {
	cfg := mustConfig(t, 1000)
	now := time.Unix(1700000000, 0)
	w := tcp.NewWindow(1000, 0, 0, now)

	before := snapshot(w)
	emission, ok := w.QueueSegment(cfg, now, buildDataHeader(0), []byte("hello"))
	if ok {
		t.Fatalf("expected no emission, got %+v", emission)
	}
	after := snapshot(w)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Window state changed on a blocked send (-before +after):\n%s", diff)
	}
}

// Property 8: an empty-payload, zero-sequence-length send does not mutate
// the queue or sequence bookkeeping.
func TestQueueSegmentControlOnlyDoesNotMutate(t *testing.T) {
	cfg := mustConfig(t, 1000)
	now := time.Unix(1700000000, 0)
	w := tcp.NewWindow(1000, 4000, 0, now)

	before := snapshot(w)
	build := func(ts uint32, seq seqnum.Value) tcp.Header {
		return &testheader.Header{Seq: seq, TSVal: ts}
	}
	emission, ok := w.QueueSegment(cfg, now, build, nil)
	if !ok {
		t.Fatal("a control segment must still emit")
	}
	if emission.StartRTO {
		t.Error("a control segment must never signal StartRTO")
	}
	after := snapshot(w)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("control segment mutated bookkeeping (-before +after):\n%s", diff)
	}
}

func TestSetSndNxtRejectsNonEmptyQueue(t *testing.T) {
	cfg := mustConfig(t, 1000)
	now := time.Unix(1700000000, 0)
	w := tcp.NewWindow(1000, 4000, 0, now)
	w.QueueSegment(cfg, now, buildDataHeader(0), []byte("x"))

	if w.SetSndNxt(9999) {
		t.Error("SetSndNxt must fail while the queue is non-empty")
	}
	w.FlushWindow()
	if !w.SetSndNxt(9999) {
		t.Error("SetSndNxt must succeed once the queue is empty")
	}
	if w.SndNxt() != 9999 {
		t.Errorf("SndNxt = %d, want 9999", w.SndNxt())
	}
}

func TestUpdateSndWndAdjustsAvailIncludingNegative(t *testing.T) {
	now := time.Unix(1700000000, 0)
	w := tcp.NewWindow(1000, 4000, 0, now)
	w.UpdateSndWnd(1000)
	if w.SndAvail() != 1000 {
		t.Errorf("SndAvail = %d, want 1000 after shrink", w.SndAvail())
	}

	cfg := mustConfig(t, 1000)
	w.QueueSegment(cfg, now, buildDataHeader(0), make([]byte, 900))
	if w.SndAvail() != 100 {
		t.Fatalf("SndAvail = %d, want 100", w.SndAvail())
	}
	w.UpdateSndWnd(50)
	if w.SndAvail() >= 0 {
		t.Errorf("SndAvail = %d, want a transient negative value after a further shrink", w.SndAvail())
	}
}

func TestNullWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	w := tcp.NewWindow(1000, 4000, 0, now)
	if !w.NullWindow() {
		t.Error("a freshly constructed Window must be null")
	}
	cfg := mustConfig(t, 1000)
	w.QueueSegment(cfg, now, buildDataHeader(0), []byte("x"))
	if w.NullWindow() {
		t.Error("Window must not be null once something is queued")
	}
	w.FlushWindow()
	if !w.NullWindow() {
		t.Error("FlushWindow must empty the queue")
	}
}

type windowSnapshot struct {
	SndNxt   seqnum.Value
	SndWnd   seqnum.Size
	SndAvail int64
	Null     bool
}

func snapshot(w *tcp.Window) windowSnapshot {
	return windowSnapshot{
		SndNxt:   w.SndNxt(),
		SndWnd:   w.SndWnd(),
		SndAvail: w.SndAvail(),
		Null:     w.NullWindow(),
	}
}
