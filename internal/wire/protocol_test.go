package wire

import (
	"net"
	"testing"
)

func samplePullRequest(t *testing.T) *Protocol {
	t.Helper()
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ci := NewContactInfo(kp.PubkeyArray(), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}, 1, 1)
	value := NewSignedCrdsValue(kp, ci)
	bloom := BloomWire{Keys: []uint64{1, 2, 3}, NumBits: 6168, Bits: make([]uint64, 97), NumBitsSet: 0}
	filter := CrdsFilter{Filter: bloom, Mask: ^uint64(0), MaskBits: 0}
	return NewPullRequestProtocol(filter, value)
}

func TestPullRequestRoundTrip(t *testing.T) {
	msg := samplePullRequest(t)
	p := NewPayload()
	dest := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}
	if err := p.Populate(dest, msg); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	decoded, err := p.DecodeProtocol()
	if err != nil {
		t.Fatalf("DecodeProtocol: %v", err)
	}
	if decoded.PullRequest == nil {
		t.Fatal("expected a PullRequest variant")
	}
	if decoded.PullRequest.Filter.Filter.NumBits != 6168 {
		t.Fatalf("filter NumBits mismatch: got %d", decoded.PullRequest.Filter.Filter.NumBits)
	}
	if decoded.PullRequest.Filter.Mask != ^uint64(0) || decoded.PullRequest.Filter.MaskBits != 0 {
		t.Fatalf("mask/mask_bits mismatch: got mask=%#x mask_bits=%d", decoded.PullRequest.Filter.Mask, decoded.PullRequest.Filter.MaskBits)
	}
	if !decoded.PullRequest.Value.Verify() {
		t.Fatal("embedded CrdsValue failed to verify")
	}
}

func TestPullResponseRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ci := NewContactInfo(kp.PubkeyArray(), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}, 1, 1)
	resp := &Protocol{PullResponse: &PullResponse{Values: []*CrdsValue{NewSignedCrdsValue(kp, ci)}}}
	resp.PullResponse.From = kp.PubkeyArray()

	p := NewPayload()
	dest := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
	if err := p.Populate(dest, resp); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	decoded, err := p.DecodeProtocol()
	if err != nil {
		t.Fatalf("DecodeProtocol: %v", err)
	}
	if decoded.PullResponse == nil || len(decoded.PullResponse.Values) != 1 {
		t.Fatal("expected one value in the pull response")
	}
}

func TestProtocolDiscardsPushAndPruneWithoutFaulting(t *testing.T) {
	push := &Protocol{PushMessage: &PushMessage{}}
	e := newEncoder()
	push.encode(e)
	if _, err := decodeProtocol(newDecoder(e.bytes())); err != nil {
		t.Fatalf("decoding an empty PushMessage should not fault: %v", err)
	}

	prune := &Protocol{PruneMessage: &PruneMessage{Origins: [][32]byte{{1}, {2}}}}
	e2 := newEncoder()
	prune.encode(e2)
	decoded, err := decodeProtocol(newDecoder(e2.bytes()))
	if err != nil {
		t.Fatalf("decoding a PruneMessage should not fault: %v", err)
	}
	if decoded.PruneMessage == nil || len(decoded.PruneMessage.Origins) != 2 {
		t.Fatal("prune message origins did not round-trip")
	}
}

func TestDecodeProtocolRejectsUnknownTag(t *testing.T) {
	e := newEncoder()
	e.writeTag(99)
	if _, err := decodeProtocol(newDecoder(e.bytes())); err == nil {
		t.Fatal("expected an error for an unknown Protocol tag")
	}
}
