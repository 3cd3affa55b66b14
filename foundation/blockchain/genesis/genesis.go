// Package genesis maintains access to the genesis file which carries the
// parameters every node on the network must agree on.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Default parameter values used when no genesis file is present.
const (
	DefaultDifficulty        = 3
	DefaultIncrementInterval = 10
	DefaultMiningReward      = "50"
	DefaultFaucetAmount      = "100"
	DefaultStatsWindow       = 10
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time   `json:"date"`
	Difficulty        int         `json:"difficulty"`         // Leading zero hex digits required at chain length zero.
	IncrementInterval int         `json:"increment_interval"` // Number of blocks between difficulty steps.
	MiningReward      json.Number `json:"mining_reward"`      // Reward paid by the coinbase transaction of a mined block.
	FaucetAmount      json.Number `json:"faucet_amount"`      // Credit granted by a faucet request.
	StatsWindow       int         `json:"stats_window"`       // Number of recent blocks averaged for mining stats.
}

// Default returns the parameters used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:              time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:        DefaultDifficulty,
		IncrementInterval: DefaultIncrementInterval,
		MiningReward:      DefaultMiningReward,
		FaucetAmount:      DefaultFaucetAmount,
		StatsWindow:       DefaultStatsWindow,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. A missing file yields the
// default parameters and fields left out of the file keep their defaults.
func Load(path string) (Genesis, error) {
	genesis := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return genesis, nil
		}
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the parameters are usable.
func (g Genesis) Validate() error {
	if g.Difficulty < 0 {
		return fmt.Errorf("difficulty must not be negative, got %d", g.Difficulty)
	}

	if g.IncrementInterval <= 0 {
		return fmt.Errorf("increment interval must be positive, got %d", g.IncrementInterval)
	}

	if g.StatsWindow <= 0 {
		return fmt.Errorf("stats window must be positive, got %d", g.StatsWindow)
	}

	if _, err := g.MiningReward.Float64(); err != nil {
		return fmt.Errorf("mining reward: %w", err)
	}

	if _, err := g.FaucetAmount.Float64(); err != nil {
		return fmt.Errorf("faucet amount: %w", err)
	}

	return nil
}

// DifficultyAt returns the difficulty for a block built while the chain
// holds chainLength blocks.
func (g Genesis) DifficultyAt(chainLength int) int {
	return g.Difficulty + chainLength/g.IncrementInterval
}
