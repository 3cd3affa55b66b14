package public

import (
	"encoding/json"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/validate"
)

type transaction struct {
	SenderAddress   string          `json:"sender_address" validate:"required"`
	SenderPubKey    string          `json:"sender_pubkey"`
	ReceiverAddress string          `json:"receiver_address" validate:"required"`
	Amount          json.RawMessage `json:"amount" validate:"required"`
	Signature       string          `json:"signature"`
}

// Validate checks the required fields are present.
func (t transaction) Validate() error {
	return validate.Check(t)
}

func (t transaction) toTx() (database.Tx, error) {
	amount, err := database.ParseAmount(t.Amount)
	if err != nil {
		return database.Tx{}, err
	}

	tx := database.Tx{
		SenderAddress:   t.SenderAddress,
		SenderPubKey:    t.SenderPubKey,
		ReceiverAddress: t.ReceiverAddress,
		Amount:          amount,
		Signature:       t.Signature,
	}

	return tx, nil
}

type mine struct {
	MinerAddress string `json:"miner_address"`
}

type faucet struct {
	Address string `json:"address" validate:"required"`
}

// Validate checks the address is present.
func (f faucet) Validate() error {
	return validate.Check(f)
}

// =============================================================================

type balance struct {
	Address   string  `json:"address"`
	Balance   float64 `json:"balance"`
	Available float64 `json:"available"`
}

type mineResult struct {
	Message    string  `json:"message"`
	Index      uint64  `json:"block_index"`
	Hash       string  `json:"hash"`
	MiningTime float64 `json:"mining_time"`
	Difficulty int     `json:"difficulty"`
	Reward     float64 `json:"mining_reward"`
}

type faucetResult struct {
	Message string      `json:"message"`
	Amount  json.Number `json:"amount"`
	Pending bool        `json:"pending"`
}

type chain struct {
	Length int                  `json:"length"`
	Chain  []database.BlockData `json:"chain"`
}

type pending struct {
	Count        int           `json:"count"`
	Transactions []database.Tx `json:"transactions"`
}
