package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ceppelli/solana-gossip-tui/internal/gossipnet"
	"github.com/ceppelli/solana-gossip-tui/internal/wire"
)

// peerEntry is the JSON-facing shape of a discovered node.
type peerEntry struct {
	Pubkey string `json:"pubkey"`
	Gossip string `json:"gossip"`
}

// peerView accumulates discovered ContactInfo records for the /peers
// endpoint, keyed by pubkey so repeated announcements don't duplicate.
type peerView struct {
	mu   sync.RWMutex
	byID map[string]peerEntry
}

func newPeerView() *peerView {
	return &peerView{byID: make(map[string]peerEntry)}
}

func (v *peerView) drain(data <-chan *gossipnet.DiscoveredNode) {
	for node := range data {
		ci, ok := node.Value.Data.(*wire.ContactInfo)
		if !ok {
			continue
		}
		id := hex.EncodeToString(ci.ID[:])
		v.mu.Lock()
		v.byID[id] = peerEntry{Pubkey: id, Gossip: ci.Gossip.String()}
		v.mu.Unlock()
	}
}

func (v *peerView) snapshot() []peerEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]peerEntry, 0, len(v.byID))
	for _, e := range v.byID {
		out = append(out, e)
	}
	return out
}

// statusServer is the chi-routed HTTP surface exposing /peers and /metrics.
type statusServer struct {
	srv *http.Server
	log *logrus.Logger
}

func startStatusServer(addr string, view *peerView, metrics *gossipnet.Metrics, log *logrus.Logger) *statusServer {
	r := chi.NewRouter()
	r.Get("/peers", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view.snapshot())
	})
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("status server stopped")
		}
	}()
	return &statusServer{srv: srv, log: log}
}

func (s *statusServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}
