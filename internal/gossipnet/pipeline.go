package gossipnet

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// channelBuffer sizes the internal payload/data channels. Generous enough
// that a momentary burst from the entrypoint does not immediately spill
// into the stages' own channel-full warnings.
const channelBuffer = 64

// Pipeline wires the receiver, sender and logic stages together with their
// per-stage control channels and shared stats and data channels, and owns
// their lifecycle.
type Pipeline struct {
	conn     *Conn
	identity *Identity
	metrics  *Metrics
	log      *logrus.Logger

	receiver *Receiver
	sender   *Sender
	logic    *Logic

	// Each stage has its own control channel: a single shared channel would
	// let one stage's goroutine race another's to consume a given Stop/
	// Counter command, leaving the other stage blocked forever waiting for
	// one that never arrives.
	receiverControl chan Command
	senderControl   chan Command
	logicControl    chan Command

	stats chan Stats
	data  chan *DiscoveredNode

	wg sync.WaitGroup
}

// InitPipeline builds a Pipeline bound to conn, publishing discovered
// records on the channel returned by Data and stats on the channel returned
// by StatsChan. metrics may be nil to disable Prometheus export.
func InitPipeline(conn *Conn, identity *Identity, metrics *Metrics, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}

	toLogic := make(chan *wire.Payload, channelBuffer)
	toSender := make(chan *wire.Payload, channelBuffer)

	p := &Pipeline{
		conn:            conn,
		identity:        identity,
		metrics:         metrics,
		log:             log,
		receiverControl: make(chan Command),
		senderControl:   make(chan Command),
		logicControl:    make(chan Command),
		stats:           make(chan Stats, channelBuffer),
		data:            make(chan *DiscoveredNode, channelBuffer),
	}

	p.receiver = NewReceiver(conn, toLogic, p.receiverControl, p.stats, log)
	p.sender = NewSender(conn, toSender, p.senderControl, p.stats, log)
	p.logic = NewLogic(identity, toLogic, toSender, p.data, p.logicControl, p.stats, metrics, log)

	return p
}

// Data returns the channel on which discovered nodes are published.
func (p *Pipeline) Data() <-chan *DiscoveredNode { return p.data }

// StatsChan returns the channel on which stage heartbeats are published.
func (p *Pipeline) StatsChan() <-chan Stats { return p.stats }

// Start launches the three stages, each in its own goroutine.
func (p *Pipeline) Start() {
	p.wg.Add(3)
	go func() { defer p.wg.Done(); p.receiver.Run() }()
	go func() { defer p.wg.Done(); p.sender.Run() }()
	go func() { defer p.wg.Done(); p.logic.Run() }()
}

// Stop sends CmdStop on each stage's own control channel and blocks until
// all three have returned. Safe to call once; a second call will block
// forever since the stages are no longer reading their control channels.
func (p *Pipeline) Stop() {
	p.receiverControl <- Command{Kind: CmdStop}
	p.senderControl <- Command{Kind: CmdStop}
	p.logicControl <- Command{Kind: CmdStop}
	p.wg.Wait()
	close(p.stats)
	close(p.data)
}

// RequestCounters asks every stage to publish its current Stats. This is
// the only way Stats reach the stats channel.
func (p *Pipeline) RequestCounters() {
	p.receiverControl <- Command{Kind: CmdCounter}
	p.senderControl <- Command{Kind: CmdCounter}
	p.logicControl <- Command{Kind: CmdCounter}
}
