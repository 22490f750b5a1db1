// Package bloom implements the pull-request membership filter: a
// counting-free Bloom filter sized by the expected number of items, a
// target false-positive rate, and a hard cap on wire size.
package bloom

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// Filter is a Bloom filter over CRDS value hashes, used to tell a peer
// which records the requester already holds.
type Filter struct {
	keys []uint64
	bits *bitset.BitSet
	set  uint64
}

// numBits computes the bit-width for a target false-positive rate over
// maxItems entries, clamped to maxBits.
func numBits(maxItems uint64, falseRate float64, maxBits uint64) uint64 {
	ln2 := math.Ln2
	n := float64(maxItems) * math.Log(falseRate) / -(ln2 * ln2)
	bits := uint64(math.Round(n))
	if bits < 8 {
		bits = 8
	}
	if bits > maxBits {
		bits = maxBits
	}
	return bits
}

// numKeys computes how many independent hash functions a filter of the
// given bit-width needs for maxItems entries, never fewer than one.
func numKeys(bits, maxItems uint64) uint64 {
	k := uint64(math.Round(float64(bits) * math.Ln2 / float64(maxItems)))
	if k < 1 {
		k = 1
	}
	return k
}

// MaskBits computes a CrdsFilter's mask_bits: ceil(log2(numItems/maxItems)),
// clamped to a minimum of 0 (a small num_items/max_items ratio yields a
// negative log2, which means the filter needs no scoping at all).
func MaskBits(numItems, maxItems uint64) uint32 {
	if numItems == 0 || maxItems == 0 {
		return 0
	}
	bits := math.Ceil(math.Log2(float64(numItems) / float64(maxItems)))
	if bits < 0 {
		bits = 0
	}
	return uint32(bits)
}

// Mask computes a CrdsFilter's mask for the given seed and mask_bits:
// (seed << (64 − mask_bits)) | (u64::MAX >> mask_bits), saturating the
// shifts to zero/all-ones the way the reference implementation's
// checked_shl/checked_shr do at the boundary (mask_bits == 0).
func Mask(seed uint64, maskBits uint32) uint64 {
	var high uint64
	if maskBits > 0 && maskBits < 64 {
		high = seed << (64 - maskBits)
	}
	low := ^uint64(0)
	if maskBits > 0 && maskBits < 64 {
		low >>= maskBits
	}
	return high | low
}

// Random builds a filter sized for maxItems entries at the given
// false-positive rate, never exceeding maxBits, with freshly drawn hash key
// seeds. For max_items=1287, false_rate=0.1, max_bits=7424 this yields the
// protocol's standard 3-key, 6168-bit filter.
func Random(maxItems uint64, falseRate float64, maxBits uint64) *Filter {
	bits := numBits(maxItems, falseRate, maxBits)
	keys := make([]uint64, numKeys(bits, maxItems))
	for i := range keys {
		keys[i] = rand.Uint64()
	}
	return &Filter{keys: keys, bits: bitset.New(uint(bits))}
}

// New builds a filter from explicit keys and bit-width, for tests and for
// reconstructing a received filter.
func New(keys []uint64, numBits uint64) *Filter {
	return &Filter{keys: append([]uint64(nil), keys...), bits: bitset.New(uint(numBits))}
}

// Keys returns the filter's hash key seeds.
func (f *Filter) Keys() []uint64 { return f.keys }

// Len returns the filter's declared bit-width.
func (f *Filter) Len() uint64 { return uint64(f.bits.Len()) }

// NumBitsSet returns the count of distinct bits set; adding an item whose
// bit is already set does not increase it.
func (f *Filter) NumBitsSet() uint64 { return f.set }

func (f *Filter) position(key uint64, item []byte) uint64 {
	h := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], key)
	h.Write(seed[:])
	h.Write(item)
	return h.Sum64() % uint64(f.bits.Len())
}

// Add marks item as present by setting one bit per hash key.
func (f *Filter) Add(item []byte) {
	for _, k := range f.keys {
		pos := f.position(k, item)
		if !f.bits.Test(uint(pos)) {
			f.bits.Set(uint(pos))
			f.set++
		}
	}
}

// Contains reports whether item may be present. False positives are
// possible; false negatives are not.
func (f *Filter) Contains(item []byte) bool {
	for _, k := range f.keys {
		if !f.bits.Test(uint(f.position(k, item))) {
			return false
		}
	}
	return true
}

// ToWire renders the filter for transmission inside a PullRequest.
func (f *Filter) ToWire() wire.BloomWire {
	words := f.bits.Bytes()
	return wire.BloomWire{
		Keys:       append([]uint64(nil), f.keys...),
		NumBits:    uint64(f.bits.Len()),
		Bits:       append([]uint64(nil), words...),
		NumBitsSet: f.set,
	}
}

// FromWire reconstructs a filter from its wire representation.
func FromWire(w wire.BloomWire) *Filter {
	bs := bitset.New(uint(w.NumBits))
	copy(bs.Bytes(), w.Bits)
	return &Filter{keys: append([]uint64(nil), w.Keys...), bits: bs, set: w.NumBitsSet}
}
