package wire

import "net"

// Payload is a fixed-capacity datagram buffer: exactly PacketDataSize bytes,
// plus a used-length and an optional destination/source socket address. It
// is stack-allocatable and never retained once handed to the logic stage —
// callers give it up on send.
type Payload struct {
	buf  [PacketDataSize]byte
	len  int
	addr *net.UDPAddr
}

// NewPayload returns a zeroed Payload ready to receive a datagram.
func NewPayload() *Payload { return &Payload{} }

// FromBytes wraps a received datagram. b must not exceed PacketDataSize; the
// receiver stage enforces this before calling FromBytes.
func FromBytes(b []byte, from *net.UDPAddr) (*Payload, error) {
	if len(b) > PacketDataSize {
		return nil, decodeErrorf("datagram of %d bytes exceeds PacketDataSize", len(b))
	}
	p := &Payload{addr: from}
	p.len = copy(p.buf[:], b)
	return p, nil
}

// Len returns the used-length of the buffer.
func (p *Payload) Len() int { return p.len }

// Bytes returns the used portion of the buffer: buf[:len].
func (p *Payload) Bytes() []byte { return p.buf[:p.len] }

// Addr returns the associated socket address, or nil if none was recorded.
func (p *Payload) Addr() *net.UDPAddr { return p.addr }

// SetAddr overrides the associated destination address.
func (p *Payload) SetAddr(addr *net.UDPAddr) { p.addr = addr }

// Populate serializes msg into the buffer starting at offset 0, records
// dest as the outbound address, and sets the used-length to the number of
// bytes written. On failure the prior buffer contents are not guaranteed to
// be preserved, but the Payload remains structurally valid and safe to
// discard.
func (p *Payload) Populate(dest *net.UDPAddr, msg *Protocol) error {
	e := newEncoder()
	msg.encode(e)
	b := e.bytes()
	if len(b) > PacketDataSize {
		return encodeErrorf("encoded message is %d bytes, exceeds PacketDataSize", len(b))
	}
	p.len = copy(p.buf[:], b)
	p.addr = dest
	return nil
}

// DecodeProtocol interprets buf[:len] as a Protocol envelope. Trailing bytes
// are rejected.
func (p *Payload) DecodeProtocol() (*Protocol, error) {
	d := newDecoder(p.Bytes())
	msg, err := decodeProtocol(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return msg, nil
}
