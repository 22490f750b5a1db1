package wire

// BloomWire is the on-the-wire shape of a pull-request Bloom filter: a set
// of hash key seeds, the bitset's declared bit length, its backing u64
// words, and a running count of set bits. internal/bloom owns the filter
// algorithm; this type is only its wire encoding.
type BloomWire struct {
	Keys       []uint64
	NumBits    uint64
	Bits       []uint64
	NumBitsSet uint64
}

func (b BloomWire) encode(e *encoder) {
	e.writeU64Seq(b.Keys)
	e.writeU64(b.NumBits)
	e.writeU64Seq(b.Bits)
	e.writeU64(b.NumBitsSet)
}

func decodeBloomWire(d *decoder) (BloomWire, error) {
	keys, err := d.readU64Seq()
	if err != nil {
		return BloomWire{}, err
	}
	numBits, err := d.readU64()
	if err != nil {
		return BloomWire{}, err
	}
	bits, err := d.readU64Seq()
	if err != nil {
		return BloomWire{}, err
	}
	numBitsSet, err := d.readU64()
	if err != nil {
		return BloomWire{}, err
	}
	return BloomWire{Keys: keys, NumBits: numBits, Bits: bits, NumBitsSet: numBitsSet}, nil
}

// CrdsFilter is the wire layer wrapping a PullRequest's Bloom filter: the
// filter body itself, plus mask and mask_bits scoping it to a slice of the
// 64-bit hash space. This client always sends the unscoped default (mask =
// u64::MAX, mask_bits = 0), but real peers require both fields present on
// the wire — omitting them breaks byte compatibility with a deployed
// cluster.
type CrdsFilter struct {
	Filter   BloomWire
	Mask     uint64
	MaskBits uint32
}

func (f CrdsFilter) encode(e *encoder) {
	f.Filter.encode(e)
	e.writeU64(f.Mask)
	e.writeU32(f.MaskBits)
}

func decodeCrdsFilter(d *decoder) (CrdsFilter, error) {
	filter, err := decodeBloomWire(d)
	if err != nil {
		return CrdsFilter{}, err
	}
	mask, err := d.readU64()
	if err != nil {
		return CrdsFilter{}, err
	}
	maskBits, err := d.readU32()
	if err != nil {
		return CrdsFilter{}, err
	}
	return CrdsFilter{Filter: filter, Mask: mask, MaskBits: maskBits}, nil
}
