// Command tcpsim drives the transmission control core through a scripted
// send/ack/retransmit/sack sequence and logs every emission, the way a
// developer exercising the core by hand would. It owns no network I/O: the
// "wire" here is just the sequence of calls below.
package main

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nwstack/tcpwin/internal/testheader"
	"github.com/nwstack/tcpwin/seqnum"
	"github.com/nwstack/tcpwin/tcpip/transport/tcp"
)

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal(err.Error())
	}
}

func run(log *zap.SugaredLogger) error {
	cfg, err := tcp.NewConfig(1000)
	if err != nil {
		return errors.Wrap(err, "tcpsim: building config")
	}

	now := time.Now()
	win := tcp.NewWindow(1000, 8192, 0, now)
	log.Infof("window opened: sndNxt=%d sndWnd=%d", win.SndNxt(), win.SndWnd())

	build := func(ts uint32, seq seqnum.Value) tcp.Header {
		return &testheader.Header{Seq: seq, TSVal: ts, HasTSOpt: true}
	}

	payload := make([]byte, 1460)
	emission, ok := win.QueueSegment(cfg, now, build, payload)
	if !ok {
		return errors.New("tcpsim: first send unexpectedly blocked")
	}
	log.Infof("queued segment: seq=%d len=%d startRTO=%v", emission.Header.SeqNum(), len(emission.Body), emission.StartRTO)

	now = now.Add(30 * time.Millisecond)
	emission2, ok := win.QueueSegment(cfg, now, build, payload)
	if !ok {
		return errors.New("tcpsim: second send unexpectedly blocked")
	}
	log.Infof("queued segment: seq=%d len=%d", emission2.Header.SeqNum(), len(emission2.Body))

	// Peer SACKs the second segment but not the first. The SACK carries a
	// timestamp echo too, same as any other segment the peer sends back.
	second := emission2.Header.(*testheader.Header)
	second.TSEcr = second.TSVal
	retransmit := win.HandleSack([]tcp.SACKBlock{{
		Left:  second.SeqNum(),
		Right: second.SeqNum().Add(seqnum.Size(len(emission2.Body)) + 1),
	}})
	log.Infof("handled sack: needRetransmit=%d", len(retransmit))

	now = now.Add(200 * time.Millisecond) // Retransmit timer fires on the unacked head.
	resend, ok := win.RetransmitTimeout()
	if !ok {
		return errors.New("tcpsim: retransmit timeout found nothing to resend")
	}
	log.Infof("retransmit timeout: seq=%d", resend.Header.SeqNum())

	// Echo the timestamp on the (re)sent head segment too, then ack
	// everything. The RTT sample below comes from the echo on the newest
	// acked segment, the second one, which was set above.
	resentHdr := resend.Header.(*testheader.Header)
	resentHdr.TSEcr = resentHdr.TSVal

	now = now.Add(20 * time.Millisecond)
	result, ok := win.AckSegment(cfg, now, win.SndNxt())
	if !ok {
		return errors.New("tcpsim: final ack was rejected")
	}
	log.Infof("acked: queueEmpty=%v hasRTT=%v rtt=%s", result.QueueEmpty, result.HasRTT, result.RTT)

	return nil
}
