package gossipnet

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// senderChannelTimeout bounds how long the sender waits for a new outbound
// Payload before re-checking the control channel.
const senderChannelTimeout = 1000 * time.Millisecond

// Sender is the pipeline's write half: it drains outbound payloads and
// writes them to the socket, addressed per Payload.Addr.
type Sender struct {
	conn    *Conn
	in      <-chan *wire.Payload
	control <-chan Command
	stats   chan<- Stats
	log     *logrus.Logger

	counter uint64
}

// NewSender builds a Sender stage reading from in.
func NewSender(conn *Conn, in <-chan *wire.Payload, control <-chan Command, stats chan<- Stats, log *logrus.Logger) *Sender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sender{conn: conn, in: in, control: control, stats: stats, log: log}
}

// Run drives the send loop until a CmdStop is observed.
func (s *Sender) Run() {
	timer := time.NewTimer(senderChannelTimeout)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(senderChannelTimeout)

		select {
		case cmd := <-s.control:
			switch cmd.Kind {
			case CmdStop:
				return
			case CmdCounter:
				s.publishStats()
			}
		case payload, ok := <-s.in:
			if !ok {
				return
			}
			dest := payload.Addr()
			if dest == nil {
				dest = s.conn.Entrypoint()
			}
			if _, err := s.conn.udp.WriteToUDP(payload.Bytes(), dest); err != nil {
				s.log.WithError(err).Warn("sender: write")
				continue
			}
			s.counter++
		case <-timer.C:
		}
	}
}

func (s *Sender) publishStats() {
	select {
	case s.stats <- Stats{ID: StageSender, Counter: s.counter}:
	default:
	}
}
