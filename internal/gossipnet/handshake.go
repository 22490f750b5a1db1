package gossipnet

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/bloom"
	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// handshakePollInterval is the read deadline used for each receive attempt
// during the handshake.
const handshakePollInterval = 200 * time.Millisecond

// handshakeDeadline bounds how long the handshake waits for a PullResponse
// once it has replied to the entrypoint's Ping with a Pong. Deliberately
// not measured from the start of the handshake: a slow-to-ping entrypoint
// gets unlimited time to challenge us, only the post-pong wait is bounded.
const handshakeDeadline = 5000 * time.Millisecond

// HandshakeResult is what a successful handshake yields: the entrypoint's
// reply and the Bloom filter this node used. A Pipeline does not take
// either; its logic stage builds a fresh filter for every pull request.
type HandshakeResult struct {
	Response *wire.PullResponse
	Filter   *bloom.Filter
}

// defaultMaxItems, defaultNumItems, defaultFalseRate and defaultMaxBits are
// the standard pull filter parameters (spec.md §3): 1287/512/0.1/7424,
// yielding a 3-key, 6168-bit filter.
const (
	defaultMaxItems  = 1287
	defaultNumItems  = 512
	defaultFalseRate = 0.1
	defaultMaxBits   = 7424
)

// buildPullRequest wraps filter and identity.Info into a freshly signed
// PullRequest protocol envelope, with the mask/mask_bits the default
// CrdsFilter configuration always carries (num_items=defaultNumItems,
// max_items=defaultMaxItems, seed=0).
func buildPullRequest(filter *bloom.Filter, identity *Identity) *wire.Protocol {
	maskBits := bloom.MaskBits(defaultNumItems, defaultMaxItems)
	mask := bloom.Mask(0, maskBits)
	crdsFilter := wire.CrdsFilter{Filter: filter.ToWire(), Mask: mask, MaskBits: maskBits}
	selfValue := wire.NewSignedCrdsValue(identity.Keypair, identity.Info)
	return wire.NewPullRequestProtocol(crdsFilter, selfValue)
}

func sendPullRequest(conn *Conn, filter *bloom.Filter, identity *Identity) error {
	out := wire.NewPayload()
	if err := out.Populate(conn.Entrypoint(), buildPullRequest(filter, identity)); err != nil {
		return protoErrorf(err, "populate pull request")
	}
	if _, err := conn.udp.WriteToUDP(out.Bytes(), conn.Entrypoint()); err != nil {
		return ioErrorf(err, "send pull request")
	}
	return nil
}

// Handshake performs the liveness-challenge and pull exchange with the
// entrypoint: send a PullRequest, answer the entrypoint's Ping with a Pong,
// retry the PullRequest every polling iteration, and wait for a
// PullResponse carrying a LegacyContactInfo value.
func Handshake(conn *Conn, identity *Identity, log *logrus.Logger) (*HandshakeResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	filter := bloom.Random(defaultMaxItems, defaultFalseRate, defaultMaxBits)

	if err := sendPullRequest(conn, filter, identity); err != nil {
		return nil, err
	}

	buf := make([]byte, wire.PacketDataSize)
	var pongSent bool
	var pongSentAt time.Time

	for {
		if pongSent && time.Since(pongSentAt) > handshakeDeadline {
			return nil, timeoutErrorf("no pull response within %s of replying to entrypoint ping", handshakeDeadline)
		}

		if err := conn.udp.SetReadDeadline(time.Now().Add(handshakePollInterval)); err != nil {
			return nil, ioErrorf(err, "set read deadline")
		}
		n, addr, err := conn.udp.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if !(errors.As(err, &netErr) && netErr.Timeout()) {
				return nil, ioErrorf(err, "read during handshake")
			}
		} else if payload, perr := wire.FromBytes(buf[:n], addr); perr != nil {
			log.WithError(perr).Debug("handshake: oversized datagram, ignored")
		} else if msg, derr := payload.DecodeProtocol(); derr != nil {
			log.WithError(derr).Debug("handshake: decode failure, ignored")
		} else {
			switch {
			case msg.Ping != nil:
				if !msg.Ping.Verify() {
					log.Debug("handshake: ping with invalid signature, ignored")
					break
				}
				pong := wire.NewPong(identity.Keypair, msg.Ping.Token)
				reply := wire.NewPongProtocol(pong)
				pongPayload := wire.NewPayload()
				if err := pongPayload.Populate(conn.Entrypoint(), reply); err != nil {
					return nil, protoErrorf(err, "populate pong")
				}
				if _, err := conn.udp.WriteToUDP(pongPayload.Bytes(), conn.Entrypoint()); err != nil {
					return nil, ioErrorf(err, "send pong")
				}
				pongSent = true
				pongSentAt = time.Now()

			case msg.PullResponse != nil:
				for _, v := range msg.PullResponse.Values {
					if _, ok := v.Data.(*wire.ContactInfo); ok && v.Verify() {
						return &HandshakeResult{Response: msg.PullResponse, Filter: filter}, nil
					}
				}

			default:
				log.Debug("handshake: unexpected message kind, ignored")
			}
		}

		// Regardless of whether a datagram was received or decoded, retry
		// the pull request at the end of every iteration.
		if err := sendPullRequest(conn, filter, identity); err != nil {
			return nil, err
		}
	}
}
