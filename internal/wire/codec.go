package wire

import (
	"bytes"
	"encoding/binary"
)

// PacketDataSize is the maximum size of a single gossip datagram: the IPv6
// MTU of 1280 bytes minus a 40-byte IPv6 header and an 8-byte fragment
// header.
const PacketDataSize = 1232

// encoder accumulates a little-endian, fixed-width wire encoding. Every
// CrdsData/Protocol/ContactInfo variant encodes itself onto one of these;
// the caller (Payload.Populate) is responsible for the overall size check.
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder { return &encoder{} }

func (e *encoder) writeU8(v uint8) { e.buf.WriteByte(v) }

func (e *encoder) writeU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) writeU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// writeTag writes a 4-byte little-endian enum discriminant.
func (e *encoder) writeTag(tag uint32) { e.writeU32(tag) }

// writeRaw writes bytes verbatim, with no length prefix (used for
// fixed-size arrays such as pubkeys and signatures).
func (e *encoder) writeRaw(b []byte) { e.buf.Write(b) }

// writeSeqLen writes the 4-byte length prefix that precedes every
// variable-length sequence on the wire.
func (e *encoder) writeSeqLen(n int) { e.writeU32(uint32(n)) }

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

// decoder reads a little-endian, fixed-width wire encoding out of a bounded
// byte slice. Every read is bounds-checked; out-of-range access yields a
// DecodeError rather than a panic.
type decoder struct {
	buf []byte
	pos int
}

func newDecoder(buf []byte) *decoder { return &decoder{buf: buf} }

func (d *decoder) remaining() int { return len(d.buf) - d.pos }

func (d *decoder) need(n int) error {
	if n < 0 || d.remaining() < n {
		return decodeErrorf("need %d bytes, have %d", n, d.remaining())
	}
	return nil
}

func (d *decoder) readU8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) readU16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos : d.pos+2])
	d.pos += 2
	return v, nil
}

func (d *decoder) readU32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *decoder) readU64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *decoder) readTag() (uint32, error) { return d.readU32() }

// readRaw reads n raw bytes with no length prefix.
func (d *decoder) readRaw(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, d.buf[d.pos:d.pos+n])
	d.pos += n
	return b, nil
}

// readSeqLen reads the 4-byte sequence length prefix.
func (d *decoder) readSeqLen() (uint32, error) { return d.readU32() }

// writeOptionU32 writes a Rust-style Option<u32>: a 4-byte enum tag (0 =
// None, 1 = Some) followed by the value when present.
func (e *encoder) writeOptionU32(v *uint32) {
	if v == nil {
		e.writeTag(0)
		return
	}
	e.writeTag(1)
	e.writeU32(*v)
}

func (d *decoder) readOptionU32() (*uint32, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		v, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, decodeErrorf("unexpected Option tag %d", tag)
	}
}

// writeBytesSeq writes a length-prefixed byte blob.
func (e *encoder) writeBytesSeq(b []byte) {
	e.writeSeqLen(len(b))
	e.writeRaw(b)
}

func (d *decoder) readBytesSeq() ([]byte, error) {
	n, err := d.readSeqLen()
	if err != nil {
		return nil, err
	}
	return d.readRaw(int(n))
}

// writeU64Seq writes a length-prefixed sequence of u64 values.
func (e *encoder) writeU64Seq(vs []uint64) {
	e.writeSeqLen(len(vs))
	for _, v := range vs {
		e.writeU64(v)
	}
}

func (d *decoder) readU64Seq() ([]uint64, error) {
	n, err := d.readSeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, n)
	for i := range out {
		v, err := d.readU64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// finish rejects trailing bytes: decode must consume the entire range.
func (d *decoder) finish() error {
	if d.remaining() != 0 {
		return decodeErrorf("%d trailing byte(s)", d.remaining())
	}
	return nil
}
