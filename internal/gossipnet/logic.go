package gossipnet

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/bloom"
	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// logicInboundTimeout bounds how long the logic stage waits for a decoded
// datagram before re-checking the control channel.
const logicInboundTimeout = 30 * time.Millisecond

// DiscoveredNode is a CrdsValue the logic stage has decoded and verified,
// handed to the consumer on the data channel.
type DiscoveredNode struct {
	Value *wire.CrdsValue
	From  StageID // always StageLogic; kept for Stats-shaped symmetry
}

// Logic is the pipeline's decode/dispatch stage: it turns raw Payloads into
// Protocol messages, answers Pings, and forwards discovered CrdsValues to
// the consumer.
type Logic struct {
	identity *Identity
	in       <-chan *wire.Payload
	out      chan<- *wire.Payload
	data     chan<- *DiscoveredNode
	control  <-chan Command
	stats    chan<- Stats
	metrics  *Metrics
	log      *logrus.Logger

	// wallclock is captured once when NewLogic builds the stage, not
	// refreshed per iteration: every self-signed ContactInfo this stage
	// sends in a PullRequest during its lifetime carries the same timestamp. This mirrors the handshake
	// stage's single wallclock snapshot and is intentional, not an
	// oversight — a long-lived pipeline is expected to be restarted
	// rather than drift its own clock forward.
	wallclock uint64
	counter   uint64
}

// NewLogic builds a Logic stage.
func NewLogic(identity *Identity, in <-chan *wire.Payload, out chan<- *wire.Payload, data chan<- *DiscoveredNode, control <-chan Command, stats chan<- Stats, metrics *Metrics, log *logrus.Logger) *Logic {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logic{
		identity:  identity,
		in:        in,
		out:       out,
		data:      data,
		control:   control,
		stats:     stats,
		metrics:   metrics,
		log:       log,
		wallclock: wallclockNow(),
	}
}

// Run drives the decode/dispatch loop until a CmdStop is observed. At the
// end of every iteration, regardless of whether an inbound payload was
// consumed, it emits a fresh PullRequest destined for the entrypoint.
func (l *Logic) Run() {
	for {
		select {
		case cmd := <-l.control:
			switch cmd.Kind {
			case CmdStop:
				return
			case CmdCounter:
				l.publishStats()
			}
		case payload, ok := <-l.in:
			if !ok {
				return
			}
			l.dispatch(payload)
		case <-time.After(logicInboundTimeout):
		}

		l.emitPullRequest()
	}
}

// emitPullRequest builds a fresh default Bloom filter and a self-signed
// CrdsValue from the stage's once-captured ContactInfo, and queues a
// PullRequest for the sender. The destination is left nil so the sender
// stage's entrypoint fallback routes it correctly.
func (l *Logic) emitPullRequest() {
	filter := bloom.Random(defaultMaxItems, defaultFalseRate, defaultMaxBits)
	maskBits := bloom.MaskBits(defaultNumItems, defaultMaxItems)
	mask := bloom.Mask(0, maskBits)
	crdsFilter := wire.CrdsFilter{Filter: filter.ToWire(), Mask: mask, MaskBits: maskBits}

	info := *l.identity.Info
	info.Wallclock = l.wallclock
	selfValue := wire.NewSignedCrdsValue(l.identity.Keypair, &info)

	req := wire.NewPullRequestProtocol(crdsFilter, selfValue)
	out := wire.NewPayload()
	if err := out.Populate(nil, req); err != nil {
		l.log.WithError(err).Warn("logic: populate pull request")
		return
	}
	select {
	case l.out <- out:
	case <-time.After(logicInboundTimeout):
		l.log.Warn("logic: sender channel full, dropped pull request")
	}
}

func (l *Logic) dispatch(payload *wire.Payload) {
	msg, err := payload.DecodeProtocol()
	if err != nil {
		l.log.WithError(err).Debug("logic: decode")
		return
	}
	l.counter++

	switch {
	case msg.Ping != nil:
		l.handlePing(msg.Ping, payload.Addr())
	case msg.Pong != nil:
		l.handlePong(msg.Pong)
	case msg.PullResponse != nil:
		l.handlePullResponse(msg.PullResponse)
	default:
		// PullRequest, PushMessage, PruneMessage: this client never
		// originates replies to these, per scope. Decoding already
		// validated the envelope; nothing further to do.
	}
}

func (l *Logic) handlePing(ping *wire.Ping, from *net.UDPAddr) {
	if !ping.Verify() {
		l.log.Debug("logic: ping with invalid signature, dropped")
		return
	}
	pong := wire.NewPong(l.identity.Keypair, ping.Token)
	reply := wire.NewPongProtocol(pong)

	out := wire.NewPayload()
	if err := out.Populate(from, reply); err != nil {
		l.log.WithError(err).Warn("logic: populate pong")
		return
	}
	select {
	case l.out <- out:
	case <-time.After(logicInboundTimeout):
		l.log.Warn("logic: sender channel full, dropped pong reply")
	}
}

func (l *Logic) handlePong(pong *wire.Pong) {
	if !pong.Verify() {
		l.log.Debug("logic: pong with invalid signature, dropped")
	}
}

// handlePullResponse forwards only LegacyContactInfo and Version records to
// the data channel; every other CrdsData variant is discarded, matching the
// long-running pipeline's narrower interest compared to the handshake path.
func (l *Logic) handlePullResponse(resp *wire.PullResponse) {
	for _, v := range resp.Values {
		if !v.Verify() {
			l.log.Debug("logic: crds value with invalid signature, dropped")
			continue
		}
		switch v.Data.(type) {
		case *wire.ContactInfo, *wire.Version:
		default:
			continue
		}
		if l.metrics != nil {
			l.metrics.NodeDiscovered()
		}
		node := &DiscoveredNode{Value: v, From: StageLogic}
		select {
		case l.data <- node:
		case <-time.After(logicInboundTimeout):
			l.log.Warn("logic: data channel full, dropped discovered node")
		}
	}
}

func (l *Logic) publishStats() {
	select {
	case l.stats <- Stats{ID: StageLogic, Counter: l.counter}:
	default:
	}
}
