package private

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/validate"
)

type register struct {
	Peer string `json:"peer" validate:"required"`
}

// Validate checks the peer is present.
func (r register) Validate() error {
	return validate.Check(r)
}

type peerUpdate struct {
	Peers []string `json:"peers" validate:"required"`
}

// Validate checks the peer list is present.
func (p peerUpdate) Validate() error {
	return validate.Check(p)
}

// txBatch accepts either a single transaction or a list of them.
type txBatch struct {
	UnTx json.RawMessage `json:"un_tx"`
}

// transactions decodes the batch in the order it was sent.
func (b txBatch) transactions() ([]database.Tx, error) {
	data := bytes.TrimSpace(b.UnTx)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, errors.New("un_tx is required")
	}

	if data[0] == '[' {
		var txs []database.Tx
		if err := json.Unmarshal(data, &txs); err != nil {
			return nil, err
		}
		return txs, nil
	}

	var tx database.Tx
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, err
	}

	return []database.Tx{tx}, nil
}

type blockProposal struct {
	Block *database.BlockData `json:"block" validate:"required"`
}

// Validate checks the block is present.
func (b blockProposal) Validate() error {
	return validate.Check(b)
}

// =============================================================================

type peerList struct {
	Message string   `json:"message,omitempty"`
	Peers   []string `json:"peers"`
}

func toURLs(peers []peer.Peer) []string {
	urls := make([]string, len(peers))
	for i, p := range peers {
		urls[i] = p.URL
	}
	return urls
}

type txResult struct {
	Tx       database.Tx `json:"tx"`
	Accepted bool        `json:"accepted"`
	Error    string      `json:"error,omitempty"`
}
