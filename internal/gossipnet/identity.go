package gossipnet

import (
	"crypto/rand"
	"net"
	"time"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// Identity is this node's gossip keypair and advertised contact info.
type Identity struct {
	Keypair *wire.Keypair
	Info    *wire.ContactInfo
}

// NewIdentity generates a fresh keypair and a ContactInfo advertising
// gossipAddr as the node's only reachable service, per spec.md's
// single-purpose-client scope (no TVU/TPU/RPC endpoints are served).
func NewIdentity(gossipAddr *net.UDPAddr, shredVersion uint16) (*Identity, error) {
	kp, err := wire.GenerateKeypair()
	if err != nil {
		return nil, ioErrorf(err, "generate keypair")
	}
	info := wire.NewContactInfo(kp.PubkeyArray(), gossipAddr, wallclockNow(), shredVersion)
	return &Identity{Keypair: kp, Info: info}, nil
}

// wallclockNow renders the current time as milliseconds since epoch, the
// unit CrdsData wallclock fields use throughout.
func wallclockNow() uint64 {
	return uint64(time.Now().UnixMilli())
}

// randomToken draws a fresh 32-byte ping/pull token.
func randomToken() ([32]byte, error) {
	var tok [32]byte
	if _, err := rand.Read(tok[:]); err != nil {
		return tok, ioErrorf(err, "generate random token")
	}
	return tok, nil
}
