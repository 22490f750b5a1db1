package wire

// CRDS data variant tags, in the fixed order the wire format requires.
const (
	crdsTagLegacyContactInfo       uint32 = 0
	crdsTagVote                    uint32 = 1
	crdsTagLowestSlot              uint32 = 2
	crdsTagSnapshotHashes          uint32 = 3
	crdsTagAccountsHashes          uint32 = 4
	crdsTagEpochSlots              uint32 = 5
	crdsTagLegacyVersion           uint32 = 6
	crdsTagVersion                 uint32 = 7
	crdsTagNodeInstance            uint32 = 8
	crdsTagDuplicateShred          uint32 = 9
	crdsTagIncrementalSnapshotHash uint32 = 10
	crdsTagContactInfo             uint32 = 11
)

// CrdsData is any value a CrdsValue can carry. Each variant knows its own
// wire tag, the pubkey it was published under, and how to encode its body
// (the tag itself is written by the caller, not by encode).
type CrdsData interface {
	crdsTag() uint32
	pubkey() [32]byte
	encode(e *encoder)
}

// SlotHash pairs a slot number with the bank hash observed at that slot.
type SlotHash struct {
	Slot uint64
	Hash [32]byte
}

func (s SlotHash) encode(e *encoder) {
	e.writeU64(s.Slot)
	e.writeRaw(s.Hash[:])
}

func decodeSlotHash(d *decoder) (SlotHash, error) {
	slot, err := d.readU64()
	if err != nil {
		return SlotHash{}, err
	}
	hash, err := d.readRaw(32)
	if err != nil {
		return SlotHash{}, err
	}
	var s SlotHash
	s.Slot = slot
	copy(s.Hash[:], hash)
	return s, nil
}

func writeSlotHashSeq(e *encoder, hs []SlotHash) {
	e.writeSeqLen(len(hs))
	for _, h := range hs {
		h.encode(e)
	}
}

func readSlotHashSeq(d *decoder) ([]SlotHash, error) {
	n, err := d.readSeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]SlotHash, n)
	for i := range out {
		h, err := decodeSlotHash(d)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

// serializeCrdsData renders tag ‖ body exactly as it appears inside a signed
// CrdsValue, so callers can both sign it and verify a received signature
// against it.
func serializeCrdsData(data CrdsData) []byte {
	e := newEncoder()
	e.writeTag(data.crdsTag())
	data.encode(e)
	return e.bytes()
}

func decodeCrdsDataBody(tag uint32, d *decoder) (CrdsData, error) {
	switch tag {
	case crdsTagLegacyContactInfo:
		return decodeContactInfo(d)
	case crdsTagVote:
		return decodeVote(d)
	case crdsTagLowestSlot:
		return decodeLowestSlot(d)
	case crdsTagSnapshotHashes:
		return decodeAccountsOrSnapshotHashes(d, false)
	case crdsTagAccountsHashes:
		return decodeAccountsOrSnapshotHashes(d, true)
	case crdsTagEpochSlots:
		return decodeEpochSlots(d)
	case crdsTagLegacyVersion:
		return decodeLegacyVersion(d)
	case crdsTagVersion:
		return decodeVersion(d)
	case crdsTagNodeInstance:
		return decodeNodeInstance(d)
	case crdsTagDuplicateShred:
		return decodeDuplicateShred(d)
	case crdsTagIncrementalSnapshotHash:
		return decodeIncrementalSnapshotHashes(d)
	case crdsTagContactInfo:
		return decodeContactInfoV2(d)
	default:
		return nil, decodeErrorf("unknown CrdsData tag %d", tag)
	}
}

// ContactInfo satisfies CrdsData under tag 0 (legacy contact info).
func (c *ContactInfo) crdsTag() uint32  { return crdsTagLegacyContactInfo }
func (c *ContactInfo) pubkey() [32]byte { return c.ID }

// Vote is a validator's vote transaction, relayed verbatim through gossip.
// The transaction bytes are opaque here: decoding and replaying votes is
// outside this client's scope, only round-tripping the envelope matters.
type Vote struct {
	Index       uint8
	From        [32]byte
	Transaction []byte
	Wallclock   uint64
}

func (v *Vote) crdsTag() uint32  { return crdsTagVote }
func (v *Vote) pubkey() [32]byte { return v.From }

func (v *Vote) encode(e *encoder) {
	e.writeU8(v.Index)
	e.writeRaw(v.From[:])
	e.writeBytesSeq(v.Transaction)
	e.writeU64(v.Wallclock)
}

func decodeVote(d *decoder) (*Vote, error) {
	v := &Vote{}
	idx, err := d.readU8()
	if err != nil {
		return nil, err
	}
	v.Index = idx
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(v.From[:], from)
	tx, err := d.readBytesSeq()
	if err != nil {
		return nil, err
	}
	v.Transaction = tx
	wc, err := d.readU64()
	if err != nil {
		return nil, err
	}
	v.Wallclock = wc
	return v, nil
}

// LowestSlot announces the oldest slot a node still has in its ledger.
type LowestSlot struct {
	From      [32]byte
	Root      uint64
	Lowest    uint64
	Wallclock uint64
}

func (l *LowestSlot) crdsTag() uint32  { return crdsTagLowestSlot }
func (l *LowestSlot) pubkey() [32]byte { return l.From }

func (l *LowestSlot) encode(e *encoder) {
	e.writeRaw(l.From[:])
	e.writeU64(l.Root)
	e.writeU64(l.Lowest)
	e.writeU64(l.Wallclock)
}

func decodeLowestSlot(d *decoder) (*LowestSlot, error) {
	l := &LowestSlot{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(l.From[:], from)
	if l.Root, err = d.readU64(); err != nil {
		return nil, err
	}
	if l.Lowest, err = d.readU64(); err != nil {
		return nil, err
	}
	if l.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	return l, nil
}

// AccountsHashes and SnapshotHashes share a wire shape: a publisher, a list
// of (slot, hash) pairs, and a wallclock. They are kept as distinct Go types
// so callers can pattern-match on which gossip announcement they received.
type SnapshotHashes struct {
	From      [32]byte
	Hashes    []SlotHash
	Wallclock uint64
}

func (s *SnapshotHashes) crdsTag() uint32  { return crdsTagSnapshotHashes }
func (s *SnapshotHashes) pubkey() [32]byte { return s.From }
func (s *SnapshotHashes) encode(e *encoder) {
	e.writeRaw(s.From[:])
	writeSlotHashSeq(e, s.Hashes)
	e.writeU64(s.Wallclock)
}

type AccountsHashes struct {
	From      [32]byte
	Hashes    []SlotHash
	Wallclock uint64
}

func (a *AccountsHashes) crdsTag() uint32  { return crdsTagAccountsHashes }
func (a *AccountsHashes) pubkey() [32]byte { return a.From }
func (a *AccountsHashes) encode(e *encoder) {
	e.writeRaw(a.From[:])
	writeSlotHashSeq(e, a.Hashes)
	e.writeU64(a.Wallclock)
}

func decodeAccountsOrSnapshotHashes(d *decoder, accounts bool) (CrdsData, error) {
	var from [32]byte
	fromBytes, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(from[:], fromBytes)
	hashes, err := readSlotHashSeq(d)
	if err != nil {
		return nil, err
	}
	wallclock, err := d.readU64()
	if err != nil {
		return nil, err
	}
	if accounts {
		return &AccountsHashes{From: from, Hashes: hashes, Wallclock: wallclock}, nil
	}
	return &SnapshotHashes{From: from, Hashes: hashes, Wallclock: wallclock}, nil
}

// EpochSlots announces which slots in the current epoch a node can serve
// via repair. The real protocol run-length-compresses this as a bitvec;
// this client only needs to round-trip the announcement, so slots are kept
// as a plain sequence.
type EpochSlots struct {
	Index     uint64
	From      [32]byte
	Wallclock uint64
	Slots     []uint64
}

func (s *EpochSlots) crdsTag() uint32  { return crdsTagEpochSlots }
func (s *EpochSlots) pubkey() [32]byte { return s.From }

func (s *EpochSlots) encode(e *encoder) {
	e.writeU64(s.Index)
	e.writeRaw(s.From[:])
	e.writeU64(s.Wallclock)
	e.writeU64Seq(s.Slots)
}

func decodeEpochSlots(d *decoder) (*EpochSlots, error) {
	s := &EpochSlots{}
	idx, err := d.readU64()
	if err != nil {
		return nil, err
	}
	s.Index = idx
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(s.From[:], from)
	if s.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if s.Slots, err = d.readU64Seq(); err != nil {
		return nil, err
	}
	return s, nil
}

// LegacyVersion is the pre-feature-set version announcement.
type LegacyVersion struct {
	From      [32]byte
	Wallclock uint64
	Major     uint16
	Minor     uint16
	Patch     uint16
}

func (v *LegacyVersion) crdsTag() uint32  { return crdsTagLegacyVersion }
func (v *LegacyVersion) pubkey() [32]byte { return v.From }

func (v *LegacyVersion) encode(e *encoder) {
	e.writeRaw(v.From[:])
	e.writeU64(v.Wallclock)
	e.writeU16(v.Major)
	e.writeU16(v.Minor)
	e.writeU16(v.Patch)
}

func decodeLegacyVersion(d *decoder) (*LegacyVersion, error) {
	v := &LegacyVersion{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(v.From[:], from)
	if v.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if v.Major, err = d.readU16(); err != nil {
		return nil, err
	}
	if v.Minor, err = d.readU16(); err != nil {
		return nil, err
	}
	if v.Patch, err = d.readU16(); err != nil {
		return nil, err
	}
	return v, nil
}

// Version adds an optional commit hash and a feature set over LegacyVersion.
type Version struct {
	From       [32]byte
	Wallclock  uint64
	Major      uint16
	Minor      uint16
	Patch      uint16
	Commit     *uint32
	FeatureSet uint32
}

func (v *Version) crdsTag() uint32  { return crdsTagVersion }
func (v *Version) pubkey() [32]byte { return v.From }

func (v *Version) encode(e *encoder) {
	e.writeRaw(v.From[:])
	e.writeU64(v.Wallclock)
	e.writeU16(v.Major)
	e.writeU16(v.Minor)
	e.writeU16(v.Patch)
	e.writeOptionU32(v.Commit)
	e.writeU32(v.FeatureSet)
}

func decodeVersion(d *decoder) (*Version, error) {
	v := &Version{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(v.From[:], from)
	if v.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if v.Major, err = d.readU16(); err != nil {
		return nil, err
	}
	if v.Minor, err = d.readU16(); err != nil {
		return nil, err
	}
	if v.Patch, err = d.readU16(); err != nil {
		return nil, err
	}
	if v.Commit, err = d.readOptionU32(); err != nil {
		return nil, err
	}
	if v.FeatureSet, err = d.readU32(); err != nil {
		return nil, err
	}
	return v, nil
}

// NodeInstance lets a node distinguish its own restarts from a duplicate
// running instance, via a per-start random token.
type NodeInstance struct {
	From      [32]byte
	Wallclock uint64
	Timestamp uint64
	Token     uint64
}

func (n *NodeInstance) crdsTag() uint32  { return crdsTagNodeInstance }
func (n *NodeInstance) pubkey() [32]byte { return n.From }

func (n *NodeInstance) encode(e *encoder) {
	e.writeRaw(n.From[:])
	e.writeU64(n.Wallclock)
	e.writeU64(n.Timestamp)
	e.writeU64(n.Token)
}

func decodeNodeInstance(d *decoder) (*NodeInstance, error) {
	n := &NodeInstance{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(n.From[:], from)
	if n.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if n.Timestamp, err = d.readU64(); err != nil {
		return nil, err
	}
	if n.Token, err = d.readU64(); err != nil {
		return nil, err
	}
	return n, nil
}

// DuplicateShred and the v2 ContactInfo (tags 9 and 11) are carried as
// opaque length-prefixed blobs: this client only needs to round-trip them
// through gossip, never construct or interpret one.
type DuplicateShred struct {
	From      [32]byte
	Wallclock uint64
	Index     uint16
	Blob      []byte
}

func (ds *DuplicateShred) crdsTag() uint32  { return crdsTagDuplicateShred }
func (ds *DuplicateShred) pubkey() [32]byte { return ds.From }

func (ds *DuplicateShred) encode(e *encoder) {
	e.writeRaw(ds.From[:])
	e.writeU64(ds.Wallclock)
	e.writeU16(ds.Index)
	e.writeBytesSeq(ds.Blob)
}

func decodeDuplicateShred(d *decoder) (*DuplicateShred, error) {
	ds := &DuplicateShred{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(ds.From[:], from)
	if ds.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if ds.Index, err = d.readU16(); err != nil {
		return nil, err
	}
	if ds.Blob, err = d.readBytesSeq(); err != nil {
		return nil, err
	}
	return ds, nil
}

// IncrementalSnapshotHashes extends SnapshotHashes with the full-snapshot
// base it is incremental from.
type IncrementalSnapshotHashes struct {
	From      [32]byte
	Base      SlotHash
	Hashes    []SlotHash
	Wallclock uint64
}

func (s *IncrementalSnapshotHashes) crdsTag() uint32  { return crdsTagIncrementalSnapshotHash }
func (s *IncrementalSnapshotHashes) pubkey() [32]byte { return s.From }

func (s *IncrementalSnapshotHashes) encode(e *encoder) {
	e.writeRaw(s.From[:])
	s.Base.encode(e)
	writeSlotHashSeq(e, s.Hashes)
	e.writeU64(s.Wallclock)
}

func decodeIncrementalSnapshotHashes(d *decoder) (*IncrementalSnapshotHashes, error) {
	s := &IncrementalSnapshotHashes{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(s.From[:], from)
	if s.Base, err = decodeSlotHash(d); err != nil {
		return nil, err
	}
	if s.Hashes, err = readSlotHashSeq(d); err != nil {
		return nil, err
	}
	if s.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	return s, nil
}

// ContactInfoV2 is the successor contact-info format (tag 11). Real gossip
// packs a compressed socket-address table in its place; this client treats
// it as an opaque blob since it never needs to originate one.
type ContactInfoV2 struct {
	From      [32]byte
	Wallclock uint64
	Blob      []byte
}

func (c *ContactInfoV2) crdsTag() uint32  { return crdsTagContactInfo }
func (c *ContactInfoV2) pubkey() [32]byte { return c.From }

func (c *ContactInfoV2) encode(e *encoder) {
	e.writeRaw(c.From[:])
	e.writeU64(c.Wallclock)
	e.writeBytesSeq(c.Blob)
}

func decodeContactInfoV2(d *decoder) (*ContactInfoV2, error) {
	c := &ContactInfoV2{}
	from, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(c.From[:], from)
	if c.Wallclock, err = d.readU64(); err != nil {
		return nil, err
	}
	if c.Blob, err = d.readBytesSeq(); err != nil {
		return nil, err
	}
	return c, nil
}

// CrdsValue is a signed CrdsData: the signature covers the tag and body
// exactly as serializeCrdsData renders them, never the signature itself.
type CrdsValue struct {
	Signature [64]byte
	Data      CrdsData
}

// NewSignedCrdsValue signs data with kp and wraps it in a CrdsValue.
func NewSignedCrdsValue(kp *Keypair, data CrdsData) *CrdsValue {
	sig := kp.Sign(serializeCrdsData(data))
	return &CrdsValue{Signature: sig, Data: data}
}

// Verify checks the CrdsValue's signature against the pubkey its Data
// claims to be published under.
func (v *CrdsValue) Verify() bool {
	return VerifySignature(v.Data.pubkey(), serializeCrdsData(v.Data), v.Signature)
}

func (v *CrdsValue) encode(e *encoder) {
	e.writeRaw(v.Signature[:])
	e.writeTag(v.Data.crdsTag())
	v.Data.encode(e)
}

func decodeCrdsValue(d *decoder) (*CrdsValue, error) {
	sig, err := d.readRaw(64)
	if err != nil {
		return nil, err
	}
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	data, err := decodeCrdsDataBody(tag, d)
	if err != nil {
		return nil, err
	}
	v := &CrdsValue{Data: data}
	copy(v.Signature[:], sig)
	return v, nil
}

func writeCrdsValueSeq(e *encoder, vs []*CrdsValue) {
	e.writeSeqLen(len(vs))
	for _, v := range vs {
		v.encode(e)
	}
}

func readCrdsValueSeq(d *decoder) ([]*CrdsValue, error) {
	n, err := d.readSeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]*CrdsValue, n)
	for i := range out {
		v, err := decodeCrdsValue(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
