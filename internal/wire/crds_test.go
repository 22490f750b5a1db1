package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestCrdsValueSignAndVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ci := NewContactInfo(kp.PubkeyArray(), &net.UDPAddr{IP: net.IPv4(1, 2, 3, 4), Port: 8000}, 1000, 1)
	value := NewSignedCrdsValue(kp, ci)

	if !value.Verify() {
		t.Fatal("freshly signed CrdsValue does not verify")
	}

	e := newEncoder()
	value.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeCrdsValue(d)
	if err != nil {
		t.Fatalf("decodeCrdsValue: %v", err)
	}
	if err := d.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !got.Verify() {
		t.Fatal("round-tripped CrdsValue does not verify")
	}
	gotCI, ok := got.Data.(*ContactInfo)
	if !ok {
		t.Fatalf("expected *ContactInfo, got %T", got.Data)
	}
	if gotCI.ID != ci.ID {
		t.Fatal("ID mismatch after round trip")
	}
}

func TestCrdsValueSignatureRejectsTamperedData(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ci := NewContactInfo(kp.PubkeyArray(), &net.UDPAddr{IP: net.IPv4(1, 2, 3, 4), Port: 8000}, 1000, 1)
	value := NewSignedCrdsValue(kp, ci)

	ci.Wallclock = 999999
	if value.Verify() {
		t.Fatal("expected verification to fail after mutating signed data")
	}
}

func TestVoteRoundTrip(t *testing.T) {
	vote := &Vote{Index: 3, Transaction: []byte{9, 9, 9}, Wallclock: 555}
	vote.From[0] = 0xAB

	e := newEncoder()
	vote.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeVote(d)
	if err != nil {
		t.Fatalf("decodeVote: %v", err)
	}
	if err := d.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got.Index != vote.Index || got.Wallclock != vote.Wallclock {
		t.Fatal("scalar field mismatch")
	}
	if !bytes.Equal(got.Transaction, vote.Transaction) {
		t.Fatal("transaction bytes mismatch")
	}
}

func TestEpochSlotsRoundTrip(t *testing.T) {
	es := &EpochSlots{Index: 2, Wallclock: 42, Slots: []uint64{10, 11, 12}}
	es.From[0] = 7

	e := newEncoder()
	es.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeEpochSlots(d)
	if err != nil {
		t.Fatalf("decodeEpochSlots: %v", err)
	}
	if got.Index != es.Index || got.Wallclock != es.Wallclock {
		t.Fatal("scalar field mismatch")
	}
	if len(got.Slots) != len(es.Slots) {
		t.Fatalf("slot count mismatch: got %d want %d", len(got.Slots), len(es.Slots))
	}
}

func TestSnapshotAndAccountsHashesRoundTrip(t *testing.T) {
	hashes := []SlotHash{{Slot: 1}, {Slot: 2}}
	snap := &SnapshotHashes{Hashes: hashes, Wallclock: 10}
	acct := &AccountsHashes{Hashes: hashes, Wallclock: 20}

	for _, tc := range []struct {
		name string
		tag  uint32
		data CrdsData
	}{
		{"snapshot", crdsTagSnapshotHashes, snap},
		{"accounts", crdsTagAccountsHashes, acct},
	} {
		e := newEncoder()
		tc.data.encode(e)
		d := newDecoder(e.bytes())
		got, err := decodeCrdsDataBody(tc.tag, d)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if err := d.finish(); err != nil {
			t.Fatalf("%s: finish: %v", tc.name, err)
		}
		if got.crdsTag() != tc.tag {
			t.Fatalf("%s: tag mismatch", tc.name)
		}
	}
}

func TestVersionOptionCommitRoundTrip(t *testing.T) {
	commit := uint32(0xDEADBEEF)
	v := &Version{Major: 1, Minor: 2, Patch: 3, Commit: &commit, FeatureSet: 7}

	e := newEncoder()
	v.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeVersion(d)
	if err != nil {
		t.Fatalf("decodeVersion: %v", err)
	}
	if got.Commit == nil || *got.Commit != commit {
		t.Fatal("commit option mismatch")
	}

	v2 := &Version{Major: 1, Minor: 2, Patch: 3, Commit: nil, FeatureSet: 7}
	e2 := newEncoder()
	v2.encode(e2)
	d2 := newDecoder(e2.bytes())
	got2, err := decodeVersion(d2)
	if err != nil {
		t.Fatalf("decodeVersion (nil commit): %v", err)
	}
	if got2.Commit != nil {
		t.Fatal("expected nil commit to round-trip as nil")
	}
}

func TestDuplicateShredAndContactInfoV2AreOpaqueBlobs(t *testing.T) {
	ds := &DuplicateShred{Index: 1, Blob: []byte{1, 2, 3, 4}}
	e := newEncoder()
	ds.encode(e)
	d := newDecoder(e.bytes())
	got, err := decodeDuplicateShred(d)
	if err != nil {
		t.Fatalf("decodeDuplicateShred: %v", err)
	}
	if !bytes.Equal(got.Blob, ds.Blob) {
		t.Fatal("blob mismatch")
	}

	civ2 := &ContactInfoV2{Wallclock: 5, Blob: []byte{5, 6, 7}}
	e2 := newEncoder()
	civ2.encode(e2)
	d2 := newDecoder(e2.bytes())
	got2, err := decodeContactInfoV2(d2)
	if err != nil {
		t.Fatalf("decodeContactInfoV2: %v", err)
	}
	if !bytes.Equal(got2.Blob, civ2.Blob) {
		t.Fatal("blob mismatch")
	}
}

func TestCrdsValueSeqRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ci := NewContactInfo(kp.PubkeyArray(), &net.UDPAddr{IP: net.IPv4(5, 5, 5, 5), Port: 9000}, 1, 1)
	values := []*CrdsValue{
		NewSignedCrdsValue(kp, ci),
		NewSignedCrdsValue(kp, &NodeInstance{From: kp.PubkeyArray(), Timestamp: 1, Token: 2}),
	}

	e := newEncoder()
	writeCrdsValueSeq(e, values)
	d := newDecoder(e.bytes())
	got, err := readCrdsValueSeq(d)
	if err != nil {
		t.Fatalf("readCrdsValueSeq: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 values, got %d", len(got))
	}
	for _, v := range got {
		if !v.Verify() {
			t.Fatal("round-tripped value failed to verify")
		}
	}
}
