package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Set of errors returned by mining and block admission.
var (
	ErrNothingToMine = errors.New("no transactions to mine")
	ErrChainMoved    = errors.New("chain tip changed while mining")
)

// MineResult describes a block mined by this node.
type MineResult struct {
	Index      uint64  `json:"block_index"`
	Hash       string  `json:"hash"`
	MiningTime float64 `json:"mining_time"`
	Difficulty int     `json:"difficulty"`
	Reward     float64 `json:"mining_reward"`
}

// =============================================================================

// MineNewBlock builds a block over the pending transactions and searches for
// its proof. When a miner address is supplied a coinbase transaction paying
// the mining reward is placed ahead of the pending transactions. The search
// runs without holding the state lock and can be cancelled through the
// context. If another block is admitted while searching, the result is
// discarded with ErrChainMoved.
func (s *State) MineNewBlock(ctx context.Context, minerAddress string) (MineResult, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	// Capture the tip and the pending transactions for this candidate.
	s.mu.RLock()
	tip := s.db.LatestBlock()
	length := s.db.Length()
	pending := s.mempool.Copy()
	s.mu.RUnlock()

	if len(pending) == 0 && minerAddress == "" {
		return MineResult{}, ErrNothingToMine
	}

	txs := make([]database.Tx, 0, len(pending)+1)
	var reward float64
	if minerAddress != "" {
		coinbase := database.NewCoinbaseTx(minerAddress, s.genesis.MiningReward)
		if err := coinbase.Validate(); err != nil {
			return MineResult{}, fmt.Errorf("coinbase: %w", err)
		}
		reward, _ = coinbase.Value()
		txs = append(txs, coinbase)
	}
	txs = append(txs, pending...)

	difficulty := s.genesis.DifficultyAt(length)
	nb := database.NewBlock(tip.Index+1, txs, tip.Hash, difficulty)

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d] txs[%d] difficulty[%d]", nb.Index, len(txs), difficulty)

	nb, proof, err := database.POW(ctx, nb, s.evHandler)
	if err != nil {
		return MineResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if latest := s.db.LatestBlock(); latest.Hash != tip.Hash {
		s.evHandler("state: MineNewBlock: MINING: tip moved from [%s] to [%s]", tip.Hash, latest.Hash)
		return MineResult{}, ErrChainMoved
	}

	block, err := s.db.Append(nb, proof)
	if err != nil {
		return MineResult{}, err
	}

	// Only the captured transactions went into the block. Anything that
	// arrived during the search stays pending.
	s.mempool.RemovePrefix(len(pending))
	s.persistChain()

	s.evHandler("state: MineNewBlock: MINING: admitted blk[%d] hash[%s]", block.Index, block.Hash)

	s.Worker.SignalShareBlock(block)

	result := MineResult{
		Index:      block.Index,
		Hash:       block.Hash,
		MiningTime: block.MiningTime,
		Difficulty: block.Difficulty,
		Reward:     reward,
	}

	return result, nil
}

// ProcessProposedBlock takes a block received from a peer, rechecks its link
// and proof in full and, if that passes, appends it to the chain. The whole
// pending pool is cleared on success, including transactions the block does
// not contain. The block is not shared again.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%d] hash[%s]", block.Index, block.Hash)
	defer s.evHandler("state: ProcessProposedBlock: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	proof := block.Hash
	block.Hash = ""

	admitted, err := s.db.Append(block, proof)
	if err != nil {
		s.evHandler("state: ProcessProposedBlock: REJECTED: %s", err)
		return err
	}

	// TODO: remove only the transactions contained in the admitted block.
	s.mempool.Truncate()
	s.persistChain()

	s.evHandler("state: ProcessProposedBlock: admitted blk[%d]", admitted.Index)

	return nil
}
