package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestEncoderDecoderRawRoundTrip(t *testing.T) {
	e := newEncoder()
	e.writeU8(7)
	e.writeU16(1000)
	e.writeU32(100000)
	e.writeU64(1 << 40)
	e.writeRaw([]byte{1, 2, 3})

	d := newDecoder(e.bytes())
	if v, err := d.readU8(); err != nil || v != 7 {
		t.Fatalf("readU8: %v %v", v, err)
	}
	if v, err := d.readU16(); err != nil || v != 1000 {
		t.Fatalf("readU16: %v %v", v, err)
	}
	if v, err := d.readU32(); err != nil || v != 100000 {
		t.Fatalf("readU32: %v %v", v, err)
	}
	if v, err := d.readU64(); err != nil || v != 1<<40 {
		t.Fatalf("readU64: %v %v", v, err)
	}
	raw, err := d.readRaw(3)
	if err != nil || !bytes.Equal(raw, []byte{1, 2, 3}) {
		t.Fatalf("readRaw: %v %v", raw, err)
	}
	if err := d.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestDecoderRejectsTrailingBytes(t *testing.T) {
	e := newEncoder()
	e.writeU32(1)
	e.writeU8(0xFF)

	d := newDecoder(e.bytes())
	if _, err := d.readU32(); err != nil {
		t.Fatalf("readU32: %v", err)
	}
	if err := d.finish(); err == nil {
		t.Fatal("expected trailing byte error")
	}
}

func TestDecoderRejectsShortInput(t *testing.T) {
	d := newDecoder([]byte{1, 2})
	if _, err := d.readU32(); err == nil {
		t.Fatal("expected insufficient-input error")
	}
}

func TestOptionU32RoundTrip(t *testing.T) {
	e := newEncoder()
	e.writeOptionU32(nil)
	v := uint32(42)
	e.writeOptionU32(&v)

	d := newDecoder(e.bytes())
	none, err := d.readOptionU32()
	if err != nil || none != nil {
		t.Fatalf("expected None, got %v %v", none, err)
	}
	some, err := d.readOptionU32()
	if err != nil || some == nil || *some != 42 {
		t.Fatalf("expected Some(42), got %v %v", some, err)
	}
}

func TestBytesSeqRoundTrip(t *testing.T) {
	e := newEncoder()
	e.writeBytesSeq([]byte("hello"))
	d := newDecoder(e.bytes())
	got, err := d.readBytesSeq()
	if err != nil || string(got) != "hello" {
		t.Fatalf("readBytesSeq: %q %v", got, err)
	}
}

func TestU64SeqRoundTrip(t *testing.T) {
	e := newEncoder()
	vs := []uint64{1, 2, 3, 1 << 60}
	e.writeU64Seq(vs)
	d := newDecoder(e.bytes())
	got, err := d.readU64Seq()
	if err != nil {
		t.Fatalf("readU64Seq: %v", err)
	}
	if len(got) != len(vs) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(vs))
	}
	for i := range vs {
		if got[i] != vs[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], vs[i])
		}
	}
}

// TestPingWireSize asserts the 132-byte size the literal Ping/Pong wire
// vectors depend on: a 4-byte Protocol tag, a 32-byte pubkey, a 32-byte
// token, and a 64-byte signature, with no length prefix on any of the
// fixed-size fields.
func TestPingWireSize(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var token [32]byte
	for i := range token {
		token[i] = byte(i)
	}
	ping := NewPing(kp, token)
	msg := NewPingProtocol(ping)

	p := NewPayload()
	dest := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}
	if err := p.Populate(dest, msg); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if p.Len() != 132 {
		t.Fatalf("expected 132-byte Ping datagram, got %d", p.Len())
	}
}

func TestPongWireSize(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var token [32]byte
	pong := NewPong(kp, token)
	msg := NewPongProtocol(pong)

	p := NewPayload()
	dest := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}
	if err := p.Populate(dest, msg); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if p.Len() != 132 {
		t.Fatalf("expected 132-byte Pong datagram, got %d", p.Len())
	}
}

func TestPingPongRoundTripThroughPayload(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var token [32]byte
	for i := range token {
		token[i] = byte(255 - i)
	}
	ping := NewPing(kp, token)
	if !ping.Verify() {
		t.Fatal("freshly signed ping does not verify")
	}

	msg := NewPingProtocol(ping)
	p := NewPayload()
	dest := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 8001}
	if err := p.Populate(dest, msg); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	received, err := FromBytes(p.Bytes(), dest)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	decoded, err := received.DecodeProtocol()
	if err != nil {
		t.Fatalf("DecodeProtocol: %v", err)
	}
	if decoded.Ping == nil {
		t.Fatal("expected a Ping variant")
	}
	if decoded.Ping.From != ping.From || decoded.Ping.Token != ping.Token {
		t.Fatal("round-tripped ping fields do not match")
	}
	if !decoded.Ping.Verify() {
		t.Fatal("round-tripped ping signature does not verify")
	}
}

func TestPongHashDeterministic(t *testing.T) {
	var token [32]byte
	for i := range token {
		token[i] = byte(i * 3)
	}
	h1 := ComputePongHash(token)
	h2 := ComputePongHash(token)
	if h1 != h2 {
		t.Fatal("ComputePongHash is not deterministic")
	}

	var other [32]byte
	other[0] = 1
	if ComputePongHash(other) == h1 {
		t.Fatal("different tokens produced the same hash")
	}
}

func TestPongVerifiesAgainstItsOwnPing(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	var token [32]byte
	for i := range token {
		token[i] = byte(i)
	}
	ping := NewPing(kp, token)

	responderKP, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	pong := NewPong(responderKP, ping.Token)
	if !pong.Verify() {
		t.Fatal("pong does not verify against its own responder key")
	}
	if pong.Hash != ComputePongHash(ping.Token) {
		t.Fatal("pong hash does not match ComputePongHash(token)")
	}
}

func TestContactInfoRoundTrip(t *testing.T) {
	var id [32]byte
	for i := range id {
		id[i] = byte(i + 1)
	}
	gossip := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 1), Port: 8000}
	ci := NewContactInfo(id, gossip, 123456789, 42)

	e := newEncoder()
	ci.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeContactInfo(d)
	if err != nil {
		t.Fatalf("decodeContactInfo: %v", err)
	}
	if err := d.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got.ID != ci.ID {
		t.Fatal("ID mismatch")
	}
	if got.Wallclock != ci.Wallclock || got.ShredVersion != ci.ShredVersion {
		t.Fatal("wallclock/shred version mismatch")
	}
	if got.Gossip.String() != ci.Gossip.String() {
		t.Fatalf("gossip address mismatch: got %s want %s", got.Gossip, ci.Gossip)
	}
	if got.TVU.String() != DefaultSocketAddr().String() {
		t.Fatalf("expected default TVU address, got %s", got.TVU)
	}
}

func TestContactInfoV6RoundTrip(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 9000}
	e := newEncoder()
	encodeSocketAddr(e, addr)
	d := newDecoder(e.bytes())
	got, err := decodeSocketAddr(d)
	if err != nil {
		t.Fatalf("decodeSocketAddr: %v", err)
	}
	if got.Port != 9000 || !got.IP.Equal(addr.IP) {
		t.Fatalf("got %v want %v", got, addr)
	}
}
