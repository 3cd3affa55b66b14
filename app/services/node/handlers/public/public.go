// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints for wallets and users.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	id, ch := h.Evts.Subscribe()
	defer h.Evts.Unsubscribe(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// CreateWallet generates a wallet held by this node.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet, err := h.State.CreateWallet()
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	return web.Respond(ctx, w, wallet, http.StatusOK)
}

// DeleteWallet removes a wallet held by this node. Deleting a wallet that
// does not exist is not an error.
func (h Handlers) DeleteWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	message := "wallet deleted successfully"
	if !h.State.DeleteWallet(web.Param(r, "address")) {
		message = "wallet already deleted"
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: message,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the confirmed balance of an address along with the
// balance once the pending transactions are mined.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	resp := balance{
		Address:   address,
		Balance:   h.State.QueryBalance(address),
		Available: h.State.QueryAvailableBalance(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new wallet transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req transaction
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := req.toTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err = h.State.SubmitWalletTransaction(tx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "tx", tx)

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// Mine mines the pending transactions into a new block. The search stops if
// the caller goes away.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req mine
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	result, err := h.State.MineNewBlock(ctx, req.MinerAddress)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNothingToMine):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, state.ErrChainMoved):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mine: %w", err)
	}

	message := fmt.Sprintf("block #%d mined successfully", result.Index)
	if req.MinerAddress != "" {
		message += fmt.Sprintf(" - miner rewarded %v coins", result.Reward)
	}

	resp := mineResult{
		Message:    message,
		Index:      result.Index,
		Hash:       result.Hash,
		MiningTime: result.MiningTime,
		Difficulty: result.Difficulty,
		Reward:     result.Reward,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Faucet queues a faucet credit for an address.
func (h Handlers) Faucet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req faucet
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := h.State.SubmitFaucetTransaction(req.Address)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := faucetResult{
		Message: fmt.Sprintf("faucet request successful, %s coins will be available after mining", tx.Amount),
		Amount:  tx.Amount,
		Pending: true,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blockchain returns the full chain.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records := h.State.RetrieveChainRecords()

	resp := chain{
		Length: len(records),
		Chain:  records,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate scans the chain and reports every failure found.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.ValidateChain(), http.StatusOK)
}

// Pending returns the transactions waiting to be mined.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.RetrieveMempool()

	resp := pending{
		Count:        len(txs),
		Transactions: txs,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MiningStats returns the difficulty schedule and recent mining times.
func (h Handlers) MiningStats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryMiningStats(), http.StatusOK)
}

// Genesis returns the chain parameters this node runs with.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}
