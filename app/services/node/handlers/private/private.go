// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Register adds a node that announced itself and answers with the peers it
// should know about.
func (h Handlers) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req register
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	pr, err := peer.New(req.Peer)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if pr.Match(h.State.RetrieveSelf()) {
		return errs.NewTrusted(errors.New("invalid peer"), http.StatusBadRequest)
	}

	resp := peerList{
		Message: "peer registered",
		Peers:   toURLs(h.State.RegisterPeer(pr)),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// UpdatePeers merges a peer list shared by another node.
func (h Handlers) UpdatePeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req peerUpdate
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	peers := make([]peer.Peer, 0, len(req.Peers))
	for _, u := range req.Peers {
		pr, err := peer.New(u)
		if err != nil {
			h.Log.Infow("update peers", "traceid", web.GetTraceID(ctx), "peer", u, "ERROR", err)
			continue
		}
		peers = append(peers, pr)
	}

	added := h.State.AddKnownPeers(peers)

	resp := struct {
		Message string `json:"message"`
		Added   int    `json:"added"`
	}{
		Message: "list of peers updated",
		Added:   added,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the peers this node knows about.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toURLs(h.State.RetrieveKnownPeers()), http.StatusOK)
}

// Chain returns the full chain for a node that is syncing.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records := h.State.RetrieveChainRecords()

	resp := struct {
		Length int                  `json:"length"`
		Chain  []database.BlockData `json:"chain"`
	}{
		Length: len(records),
		Chain:  records,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the pending transactions for a node that is syncing.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		UnTx []database.Tx `json:"un_tx"`
	}{
		UnTx: h.State.RetrieveMempool(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitNodeTransaction adds transactions shared by another node to the
// mempool. Each transaction is admitted on its own and the result of every
// one is reported.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req txBatch
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txs, err := req.transactions()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	status := http.StatusOK
	results := make([]txResult, len(txs))
	for i, tx := range txs {
		results[i] = txResult{Tx: tx, Accepted: true}

		if err := h.State.UpsertNodeTransaction(tx); err != nil {
			h.Log.Infow("node tran", "traceid", web.GetTraceID(ctx), "tx", tx, "ERROR", err)

			results[i].Accepted = false
			results[i].Error = err.Error()
			status = http.StatusBadRequest
		}
	}

	resp := struct {
		Results []txResult `json:"results"`
	}{
		Results: results,
	}

	return web.Respond(ctx, w, resp, status)
}

// ProposeBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req blockProposal
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	// Ask the state package to validate the proposed block. If the block
	// passes validation, it will be added to the blockchain database.
	if err := h.State.ProcessProposedBlock(database.ToBlock(*req.Block)); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "block accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
