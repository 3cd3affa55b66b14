package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// MiningStats summarizes the difficulty schedule and recent mining times.
type MiningStats struct {
	Difficulty          int     `json:"difficulty"`
	BaseDifficulty      int     `json:"base_difficulty"`
	IncrementInterval   int     `json:"increment_interval"`
	ChainLength         int     `json:"chain_length"`
	BlocksUntilNextStep int     `json:"blocks_until_next_step"`
	AverageMiningTime   float64 `json:"average_mining_time"`
}

// =============================================================================

// QueryBalance returns the balance of the address over the admitted blocks.
func (s *State) QueryBalance(address string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Balance(address)
}

// QueryAvailableBalance returns the balance of the address over the admitted
// blocks and the pending pool.
func (s *State) QueryAvailableBalance(address string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Balance(address) + database.NetAmount(address, s.mempool.Copy())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// ValidateChain scans the chain and reports every failure found.
func (s *State) ValidateChain() database.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Validate()
}

// QueryMiningStats returns the difficulty the next block will be mined at,
// how many blocks remain until it steps up and the average mining time of
// the most recent blocks.
func (s *State) QueryMiningStats() MiningStats {
	s.mu.RLock()
	blocks := s.db.Blocks()
	s.mu.RUnlock()

	length := len(blocks)
	interval := s.genesis.IncrementInterval

	stats := MiningStats{
		Difficulty:          s.genesis.DifficultyAt(length),
		BaseDifficulty:      s.genesis.Difficulty,
		IncrementInterval:   interval,
		ChainLength:         length,
		BlocksUntilNextStep: interval - length%interval,
	}

	// Genesis is never mined so it is left out of the average.
	recent := blocks[1:]
	if len(recent) > s.genesis.StatsWindow {
		recent = recent[len(recent)-s.genesis.StatsWindow:]
	}

	if len(recent) > 0 {
		var total float64
		for _, b := range recent {
			total += b.MiningTime
		}
		stats.AverageMiningTime = total / float64(len(recent))
	}

	return stats
}
