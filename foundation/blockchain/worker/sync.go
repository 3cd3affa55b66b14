package worker

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// Sync registers this node with the bootstrap peer and pulls in its peers,
// chain and mempool. Failures are reported and the node carries on with
// what it has.
func (w *Worker) Sync(bootstrap peer.Peer) {
	w.evHandler("worker: sync: started: %s", bootstrap)
	defer w.evHandler("worker: sync: completed")

	peers, err := w.state.NetRegisterWithPeer(bootstrap)
	if err != nil {
		w.evHandler("worker: sync: register: %s: ERROR: %s", bootstrap, err)
		return
	}

	// Add new peers to this nodes list.
	w.state.AddKnownPeer(bootstrap)
	if n := w.state.AddKnownPeers(peers); n > 0 {
		w.evHandler("worker: sync: register: %s: added peers[%d]", bootstrap, n)
	}

	// Take the peer chain when ours has nothing worth keeping or theirs
	// is longer.
	chain, err := w.state.NetRequestPeerChain(bootstrap)
	if err != nil {
		w.evHandler("worker: sync: requestPeerChain: %s: ERROR: %s", bootstrap, err)
	} else if err := w.state.AdoptChain(chain); err != nil {
		w.evHandler("worker: sync: adoptChain: %s: %s", bootstrap, err)
	}

	// Retrieve the mempool from the peer.
	pool, err := w.state.NetRequestPeerMempool(bootstrap)
	if err != nil {
		w.evHandler("worker: sync: requestPeerMempool: %s: ERROR: %s", bootstrap, err)
		return
	}

	for _, tx := range pool {
		if err := w.state.UpsertNodeTransaction(tx); err != nil {
			w.evHandler("worker: sync: requestPeerMempool: %s: tx[%s]: ERROR: %s", bootstrap, tx, err)
		}
	}
}
