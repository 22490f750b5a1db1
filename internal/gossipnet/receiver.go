package gossipnet

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// receiverReadTimeout bounds each individual socket read, so the stage can
// notice a Stop command without blocking forever on an idle entrypoint.
const receiverReadTimeout = 1000 * time.Millisecond

// minDatagramLen is the shortest a Protocol envelope can possibly be (a
// bare 4-byte tag); anything shorter is not worth handing to the decoder.
const minDatagramLen = 4

// defaultIncludeLengths is the receiver's length allowlist: a datagram of
// one of these byte lengths is always forwarded, regardless of the exclude
// set below. Ping/Pong datagrams (132 bytes) are the one variant this
// client cannot afford to miss.
var defaultIncludeLengths = map[int]struct{}{
	132: {},
}

// defaultExcludeLengths is the receiver's length blocklist: observed sizes
// of CrdsData variants this client has no use for and does not want to pay
// to decode. This is an ad-hoc compatibility heuristic inherited from the
// deployed peer population, not a protocol rule — preserve the exact set
// for behavioral parity with real peers.
var defaultExcludeLengths = map[int]struct{}{
	472: {}, 430: {}, 442: {}, 446: {}, 454: {}, 466: {}, 478: {}, 491: {},
	503: {}, 515: {}, 724: {}, 185: {}, 240: {}, 200: {}, 800: {}, 1049: {},
	1022: {}, 1026: {}, 1028: {}, 1032: {}, 1038: {}, 1039: {}, 163: {},
	168: {}, 360: {}, 320: {}, 280: {},
}

// Receiver is the pipeline's read half: it owns the UDP socket's read path,
// drops datagrams rejected by its length filter, and forwards the rest to
// the logic stage.
type Receiver struct {
	conn    *Conn
	out     chan<- *wire.Payload
	control <-chan Command
	stats   chan<- Stats
	log     *logrus.Logger

	include map[int]struct{}
	exclude map[int]struct{}

	counter uint64
}

// NewReceiver builds a Receiver stage. out is the channel logic reads from;
// control is this stage's own Stop/Counter channel; stats is where heartbeats are
// published. The length include/exclude sets default to the protocol's
// standard compatibility filter.
func NewReceiver(conn *Conn, out chan<- *wire.Payload, control <-chan Command, stats chan<- Stats, log *logrus.Logger) *Receiver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Receiver{
		conn: conn, out: out, control: control, stats: stats, log: log,
		include: defaultIncludeLengths, exclude: defaultExcludeLengths,
	}
}

// Run drives the receive loop until a CmdStop is observed. It is meant to
// run in its own goroutine.
func (r *Receiver) Run() {
	buf := make([]byte, wire.PacketDataSize)
	for {
		select {
		case cmd := <-r.control:
			switch cmd.Kind {
			case CmdStop:
				return
			case CmdCounter:
				r.publishStats()
			}
		default:
		}

		if err := r.conn.udp.SetReadDeadline(time.Now().Add(receiverReadTimeout)); err != nil {
			r.log.WithError(err).Warn("receiver: set read deadline")
			return
		}
		n, addr, err := r.conn.udp.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			r.log.WithError(err).Debug("receiver: read")
			continue
		}
		r.counter++

		if !r.acceptableLength(n) {
			r.log.WithField("len", n).Debug("receiver: dropped by length filter")
			continue
		}

		payload, err := wire.FromBytes(buf[:n], addr)
		if err != nil {
			r.log.WithError(err).Debug("receiver: payload construction")
			continue
		}

		select {
		case r.out <- payload:
		case cmd := <-r.control:
			if cmd.Kind == CmdStop {
				return
			}
		}
	}
}

// acceptableLength is the receiver's include/exclude length filter: a
// datagram of byte length n is forwarded iff n is in the include set, or n
// is not in the exclude set — after first rejecting anything shorter than
// a bare tag or longer than the fixed datagram capacity, which the decoder
// could never accept regardless of the compatibility sets.
func (r *Receiver) acceptableLength(n int) bool {
	if n < minDatagramLen || n > wire.PacketDataSize {
		return false
	}
	if _, ok := r.include[n]; ok {
		return true
	}
	_, excluded := r.exclude[n]
	return !excluded
}

func (r *Receiver) publishStats() {
	select {
	case r.stats <- Stats{ID: StageReceiver, Counter: r.counter}:
	default:
	}
}
