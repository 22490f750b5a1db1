package gossipnet

import (
	"testing"

	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

func newTestReceiver() *Receiver {
	return &Receiver{include: defaultIncludeLengths, exclude: defaultExcludeLengths}
}

func TestAcceptableLengthEnforcesStructuralBounds(t *testing.T) {
	r := newTestReceiver()
	cases := []struct {
		n    int
		want bool
	}{
		{0, false},
		{minDatagramLen - 1, false},
		{wire.PacketDataSize + 1, false},
	}
	for _, tc := range cases {
		if got := r.acceptableLength(tc.n); got != tc.want {
			t.Errorf("acceptableLength(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

// TestAcceptableLengthMatchesIncludeExcludeSets exercises the spec's length
// filter determinism property directly: forwarded iff L is in the include
// set, or L is not in the exclude set.
func TestAcceptableLengthMatchesIncludeExcludeSets(t *testing.T) {
	r := newTestReceiver()
	cases := []struct {
		n    int
		want bool
	}{
		{132, true},              // in include set
		{472, false},             // in exclude set, not in include set
		{430, false},             // in exclude set
		{280, false},             // in exclude set (last entry of the set)
		{minDatagramLen, true},   // neither set: not excluded, so forwarded
		{500, true},              // neither set: not excluded, so forwarded
		{wire.PacketDataSize, true},
	}
	for _, tc := range cases {
		if got := r.acceptableLength(tc.n); got != tc.want {
			t.Errorf("acceptableLength(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestAcceptableLengthIsDeterministic(t *testing.T) {
	r := newTestReceiver()
	for i := 0; i < 100; i++ {
		if r.acceptableLength(132) != true {
			t.Fatal("acceptableLength is not deterministic for a fixed input")
		}
		if r.acceptableLength(472) != false {
			t.Fatal("acceptableLength is not deterministic for a fixed input")
		}
	}
}
