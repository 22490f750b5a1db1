package wire

// Protocol envelope tags, in wire order.
const (
	protoTagPullRequest  uint32 = 0
	protoTagPullResponse uint32 = 1
	protoTagPushMessage  uint32 = 2
	protoTagPruneMessage uint32 = 3
	protoTagPingMessage  uint32 = 4
	protoTagPongMessage  uint32 = 5
)

// PullRequest carries a CrdsFilter (Bloom filter plus mask/mask_bits)
// describing what the sender already has, plus the sender's own CrdsValue
// (almost always its ContactInfo) so the recipient can learn about the
// requester.
type PullRequest struct {
	Filter CrdsFilter
	Value  *CrdsValue
}

// PullResponse answers a PullRequest with the values the filter missed.
type PullResponse struct {
	From   [32]byte
	Values []*CrdsValue
}

// PushMessage gossips values outward unsolicited. This client never
// originates one, but must decode and discard it without faulting.
type PushMessage struct {
	From   [32]byte
	Values []*CrdsValue
}

// PruneMessage asks a peer to stop pushing values that originated from the
// origins listed, as relayed through From. This client never originates
// one either, but must decode and discard it.
type PruneMessage struct {
	From        [32]byte
	Destination [32]byte
	Origins     [][32]byte
	Wallclock   uint64
	Signature   [64]byte
}

// Protocol is the outer envelope every gossip datagram carries: exactly one
// of the six message kinds below, selected by a 4-byte tag.
type Protocol struct {
	PullRequest  *PullRequest
	PullResponse *PullResponse
	PushMessage  *PushMessage
	PruneMessage *PruneMessage
	Ping         *Ping
	Pong         *Pong
}

// NewPullRequestProtocol wraps a pull request for transmission.
func NewPullRequestProtocol(filter CrdsFilter, value *CrdsValue) *Protocol {
	return &Protocol{PullRequest: &PullRequest{Filter: filter, Value: value}}
}

// NewPingProtocol wraps a Ping for transmission.
func NewPingProtocol(p *Ping) *Protocol { return &Protocol{Ping: p} }

// NewPongProtocol wraps a Pong for transmission.
func NewPongProtocol(p *Pong) *Protocol { return &Protocol{Pong: p} }

func (m *Protocol) encode(e *encoder) {
	switch {
	case m.PullRequest != nil:
		e.writeTag(protoTagPullRequest)
		m.PullRequest.Filter.encode(e)
		m.PullRequest.Value.encode(e)
	case m.PullResponse != nil:
		e.writeTag(protoTagPullResponse)
		e.writeRaw(m.PullResponse.From[:])
		writeCrdsValueSeq(e, m.PullResponse.Values)
	case m.PushMessage != nil:
		e.writeTag(protoTagPushMessage)
		e.writeRaw(m.PushMessage.From[:])
		writeCrdsValueSeq(e, m.PushMessage.Values)
	case m.PruneMessage != nil:
		e.writeTag(protoTagPruneMessage)
		e.writeRaw(m.PruneMessage.From[:])
		e.writeRaw(m.PruneMessage.Destination[:])
		e.writeSeqLen(len(m.PruneMessage.Origins))
		for _, o := range m.PruneMessage.Origins {
			e.writeRaw(o[:])
		}
		e.writeU64(m.PruneMessage.Wallclock)
		e.writeRaw(m.PruneMessage.Signature[:])
	case m.Ping != nil:
		e.writeTag(protoTagPingMessage)
		m.Ping.encode(e)
	case m.Pong != nil:
		e.writeTag(protoTagPongMessage)
		m.Pong.encode(e)
	default:
		panic("wire: empty Protocol envelope")
	}
}

func decodeProtocol(d *decoder) (*Protocol, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case protoTagPullRequest:
		filter, err := decodeCrdsFilter(d)
		if err != nil {
			return nil, err
		}
		value, err := decodeCrdsValue(d)
		if err != nil {
			return nil, err
		}
		return &Protocol{PullRequest: &PullRequest{Filter: filter, Value: value}}, nil

	case protoTagPullResponse:
		fromBytes, err := d.readRaw(32)
		if err != nil {
			return nil, err
		}
		values, err := readCrdsValueSeq(d)
		if err != nil {
			return nil, err
		}
		r := &PullResponse{Values: values}
		copy(r.From[:], fromBytes)
		return &Protocol{PullResponse: r}, nil

	case protoTagPushMessage:
		fromBytes, err := d.readRaw(32)
		if err != nil {
			return nil, err
		}
		values, err := readCrdsValueSeq(d)
		if err != nil {
			return nil, err
		}
		m := &PushMessage{Values: values}
		copy(m.From[:], fromBytes)
		return &Protocol{PushMessage: m}, nil

	case protoTagPruneMessage:
		p := &PruneMessage{}
		fromBytes, err := d.readRaw(32)
		if err != nil {
			return nil, err
		}
		copy(p.From[:], fromBytes)
		destBytes, err := d.readRaw(32)
		if err != nil {
			return nil, err
		}
		copy(p.Destination[:], destBytes)
		n, err := d.readSeqLen()
		if err != nil {
			return nil, err
		}
		p.Origins = make([][32]byte, n)
		for i := range p.Origins {
			ob, err := d.readRaw(32)
			if err != nil {
				return nil, err
			}
			copy(p.Origins[i][:], ob)
		}
		if p.Wallclock, err = d.readU64(); err != nil {
			return nil, err
		}
		sigBytes, err := d.readRaw(64)
		if err != nil {
			return nil, err
		}
		copy(p.Signature[:], sigBytes)
		return &Protocol{PruneMessage: p}, nil

	case protoTagPingMessage:
		ping, err := decodePing(d)
		if err != nil {
			return nil, err
		}
		return &Protocol{Ping: ping}, nil

	case protoTagPongMessage:
		pong, err := decodePong(d)
		if err != nil {
			return nil, err
		}
		return &Protocol{Pong: pong}, nil

	default:
		return nil, decodeErrorf("unknown Protocol tag %d", tag)
	}
}
