package wire

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
)

// pingPongHashPrefix is prepended to the length-prefixed token bytes before
// hashing to produce a Pong's challenge hash.
const pingPongHashPrefix = "SOLANA_PING_PONG"

// Keypair is the node's Ed25519 identity, generated fresh per session
// (spec.md §4.4/§9: never shared, never persisted).
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeypair creates a fresh Ed25519 identity.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{Public: pub, Private: priv}, nil
}

// Sign produces a 64-byte Ed25519 signature over msg.
func (k *Keypair) Sign(msg []byte) [64]byte {
	sig := ed25519.Sign(k.Private, msg)
	var out [64]byte
	copy(out[:], sig)
	return out
}

// PubkeyArray returns the 32-byte public key as a fixed array.
func (k *Keypair) PubkeyArray() [32]byte {
	var out [32]byte
	copy(out[:], k.Public)
	return out
}

// VerifySignature checks an Ed25519 signature over msg by pubkey.
func VerifySignature(pubkey [32]byte, msg []byte, sig [64]byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pubkey[:]), msg, sig[:])
}

// ComputePongHash computes SHA256("SOLANA_PING_PONG" ‖ serialize(token)),
// where token's serialization here is length-prefixed per the sequence
// encoding rule (spec.md §6) — distinct from the fixed-width, unprefixed
// encoding token gets as a field of Ping itself.
func ComputePongHash(token [32]byte) [32]byte {
	e := newEncoder()
	e.writeBytesSeq(token[:])

	h := sha256.New()
	h.Write([]byte(pingPongHashPrefix))
	h.Write(e.bytes())

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Ping is a liveness challenge: a sender pubkey, a random token, and a
// signature over that token.
type Ping struct {
	From      [32]byte
	Token     [32]byte
	Signature [64]byte
}

// NewPing signs token with kp and wraps it in a Ping.
func NewPing(kp *Keypair, token [32]byte) *Ping {
	return &Ping{
		From:      kp.PubkeyArray(),
		Token:     token,
		Signature: kp.Sign(token[:]),
	}
}

// Verify checks the Ping's signature over its token.
func (p *Ping) Verify() bool { return VerifySignature(p.From, p.Token[:], p.Signature) }

func (p *Ping) encode(e *encoder) {
	e.writeRaw(p.From[:])
	e.writeRaw(p.Token[:])
	e.writeRaw(p.Signature[:])
}

func decodePing(d *decoder) (*Ping, error) {
	p := &Ping{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(p.From[:], from)
	token, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(p.Token[:], token)
	sig, err := d.readRaw(64)
	if err != nil {
		return nil, err
	}
	copy(p.Signature[:], sig)
	return p, nil
}

// Pong is the reply to a Ping: the responder pubkey, the challenge hash,
// and a signature over that hash.
type Pong struct {
	From      [32]byte
	Hash      [32]byte
	Signature [64]byte
}

// NewPong computes the challenge hash for token and signs it with kp.
func NewPong(kp *Keypair, token [32]byte) *Pong {
	hash := ComputePongHash(token)
	return &Pong{
		From:      kp.PubkeyArray(),
		Hash:      hash,
		Signature: kp.Sign(hash[:]),
	}
}

// Verify checks the Pong's signature over its hash.
func (p *Pong) Verify() bool { return VerifySignature(p.From, p.Hash[:], p.Signature) }

func (p *Pong) encode(e *encoder) {
	e.writeRaw(p.From[:])
	e.writeRaw(p.Hash[:])
	e.writeRaw(p.Signature[:])
}

func decodePong(d *decoder) (*Pong, error) {
	p := &Pong{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(p.From[:], from)
	hash, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(p.Hash[:], hash)
	sig, err := d.readRaw(64)
	if err != nil {
		return nil, err
	}
	copy(p.Signature[:], sig)
	return p, nil
}
