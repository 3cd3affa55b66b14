package worker_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// recorder is a peer that remembers the requests it receives.
type recorder struct {
	mu     sync.Mutex
	bodies map[string][]string
	routes map[string]any
}

func newRecorder() *recorder {
	return &recorder{
		bodies: make(map[string][]string),
		routes: make(map[string]any),
	}
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	rec.mu.Lock()
	rec.bodies[r.URL.Path] = append(rec.bodies[r.URL.Path], string(body))
	resp, exists := rec.routes[r.URL.Path]
	rec.mu.Unlock()

	if !exists {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (rec *recorder) received(path string) []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	return append([]string(nil), rec.bodies[path]...)
}

func (rec *recorder) waitFor(t *testing.T, path string) string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if bodies := rec.received(path); len(bodies) > 0 {
			return bodies[0]
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("\t%s\tShould receive a request on %s.", failed, path)
	return ""
}

func newState(t *testing.T, selfURL string, known ...peer.Peer) *state.State {
	t.Helper()

	self, err := peer.New(selfURL)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the node peer: %v", failed, err)
	}

	gen := genesis.Default()
	gen.Difficulty = 1

	peers := peer.NewPeerSet()
	for _, p := range known {
		peers.Add(p)
	}

	st, err := state.New(state.Config{
		Self:       self,
		Genesis:    gen,
		Storage:    memory.New(),
		KnownPeers: peers,
		EvHandler:  func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

// =============================================================================

func Test_Sharing(t *testing.T) {
	rec := newRecorder()
	srv := httptest.NewServer(rec)
	defer srv.Close()

	known, err := peer.New(srv.URL)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the peer: %v", failed, err)
	}

	st := newState(t, "http://localhost:9080", known)
	w := worker.Run(st, func(v string, args ...any) { t.Logf(v, args...) })
	defer st.Shutdown()

	if st.Worker != w {
		t.Fatalf("\t%s\tShould register the worker with the state when it starts.", failed)
	}

	t.Log("Given the need to share local activity with the known peers.")
	{
		tx, err := st.SubmitFaucetTransaction("alice")
		if err != nil {
			t.Fatalf("\t%s\tShould accept a faucet request: %v", failed, err)
		}

		var txReq struct {
			UnTx database.Tx `json:"un_tx"`
		}
		if err := json.Unmarshal([]byte(rec.waitFor(t, "/update/uncon_tx")), &txReq); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the shared transaction: %v", failed, err)
		}
		if txReq.UnTx != tx {
			t.Fatalf("\t%s\tShould share the faucet transaction: %+v", failed, txReq.UnTx)
		}
		t.Logf("\t%s\tShould share the faucet transaction.", success)

		if _, err := st.MineNewBlock(context.Background(), "M"); err != nil {
			t.Fatalf("\t%s\tShould be able to mine: %v", failed, err)
		}

		var blockReq struct {
			Block database.BlockData `json:"block"`
		}
		if err := json.Unmarshal([]byte(rec.waitFor(t, "/update/block")), &blockReq); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the shared block: %v", failed, err)
		}
		if blockReq.Block.Hash != st.RetrieveLatestBlock().Hash || len(blockReq.Block.Transactions) != 2 {
			t.Fatalf("\t%s\tShould share the mined block: %+v", failed, blockReq.Block)
		}
		t.Logf("\t%s\tShould share the mined block.", success)

		joiner, _ := peer.New("http://localhost:9081")
		st.RegisterPeer(joiner)

		var peersReq struct {
			Peers []string `json:"peers"`
		}
		if err := json.Unmarshal([]byte(rec.waitFor(t, "/register/update")), &peersReq); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the shared peers: %v", failed, err)
		}
		if len(peersReq.Peers) != 3 {
			t.Fatalf("\t%s\tShould share known peers plus self: %v", failed, peersReq.Peers)
		}
		t.Logf("\t%s\tShould share the peer list after a registration.", success)
	}
}

func Test_Sync(t *testing.T) {
	remote := newState(t, "http://localhost:9090")
	for i := 0; i < 2; i++ {
		if _, err := remote.MineNewBlock(context.Background(), "M"); err != nil {
			t.Fatalf("\t%s\tShould be able to mine on the remote: %v", failed, err)
		}
	}
	if _, err := remote.SubmitFaucetTransaction("bob"); err != nil {
		t.Fatalf("\t%s\tShould accept a faucet request on the remote: %v", failed, err)
	}

	rec := newRecorder()
	rec.routes["/register"] = map[string]any{"message": "registered", "peers": []string{"http://localhost:9091", "http://localhost:9080"}}
	rec.routes["/get/chain"] = map[string]any{"length": remote.RetrieveChainLength(), "chain": remote.RetrieveChainRecords()}
	rec.routes["/get/un_tx"] = map[string]any{"un_tx": remote.RetrieveMempool()}

	srv := httptest.NewServer(rec)
	defer srv.Close()

	bootstrap, _ := peer.New(srv.URL)

	st := newState(t, "http://localhost:9080")
	w := worker.Run(st, func(v string, args ...any) { t.Logf(v, args...) })
	defer st.Shutdown()

	w.Sync(bootstrap)

	t.Log("Given the need to catch up with the network when joining.")
	{
		var regReq struct {
			Peer string `json:"peer"`
		}
		if err := json.Unmarshal([]byte(rec.waitFor(t, "/register")), &regReq); err != nil || regReq.Peer != "http://localhost:9080" {
			t.Fatalf("\t%s\tShould register with the node URL: %q %v", failed, regReq.Peer, err)
		}
		t.Logf("\t%s\tShould register with the node URL.", success)

		if got := len(st.RetrieveKnownPeers()); got != 2 {
			t.Fatalf("\t%s\tShould know the bootstrap and its peers but not itself, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould know the bootstrap and its peers but not itself.", success)

		if st.RetrieveLatestBlock().Hash != remote.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould adopt the longer chain.", failed)
		}
		t.Logf("\t%s\tShould adopt the longer chain.", success)

		if st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould admit the remote mempool, got %d.", failed, st.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould admit the remote mempool.", success)
	}
}

func Test_SyncUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	bootstrap, _ := peer.New(srv.URL)
	srv.Close()

	st := newState(t, "http://localhost:9080")
	w := worker.Run(st, func(v string, args ...any) { t.Logf(v, args...) })
	defer st.Shutdown()

	w.Sync(bootstrap)

	if st.RetrieveChainLength() != 1 || len(st.RetrieveKnownPeers()) != 0 {
		t.Fatalf("\t%s\tShould start alone when the bootstrap is unreachable.", failed)
	}
	t.Logf("\t%s\tShould start alone when the bootstrap is unreachable.", success)
}
