// Package database handles the chain of admitted blocks: the transaction and
// block models, their digests, proof of work, block admission, balances and
// chain validation.
package database

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// ErrEmptyChain is returned when a chain is constructed without blocks.
var ErrEmptyChain = errors.New("chain must contain a genesis block")

// Report is the result of a diagnostic scan of the chain.
type Report struct {
	Valid       bool     `json:"valid"`
	TotalBlocks int      `json:"total_blocks"`
	Errors      []string `json:"errors"`
}

// =============================================================================

// Database manages the append only chain of admitted blocks. The chain is
// never empty; index 0 is always the genesis block.
type Database struct {
	mu    sync.RWMutex
	chain []Block
}

// New constructs a database whose chain holds only the genesis block.
func New(genesis Block) *Database {
	return &Database{
		chain: []Block{genesis},
	}
}

// FromRecords constructs a database from exported block records. The
// blocks are restored exactly as recorded; use Validate to check them.
func FromRecords(records []BlockData) (*Database, error) {
	if len(records) == 0 {
		return nil, ErrEmptyChain
	}

	chain := make([]Block, len(records))
	for i, bd := range records {
		if bd.Hash == "" {
			return nil, fmt.Errorf("block %d: missing hash", i)
		}
		chain[i] = ToBlock(bd)
	}

	return &Database{chain: chain}, nil
}

// Append admits the block to the chain when it links to the tip and the
// proof is its digest solved for the block's difficulty. The chain is not
// modified on failure.
func (db *Database) Append(block Block, proof string) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tip := db.chain[len(db.chain)-1]

	if block.PrevHash != tip.Hash {
		return Block{}, fmt.Errorf("%w: got %s, exp %s", ErrPrevHashMismatch, block.PrevHash, tip.Hash)
	}

	if block.Index != tip.Index+1 {
		return Block{}, fmt.Errorf("%w: got %d, exp %d", ErrIndexMismatch, block.Index, tip.Index+1)
	}

	if err := block.ValidateProof(proof); err != nil {
		return Block{}, err
	}

	block.Hash = proof
	db.chain = append(db.chain, block)

	return block, nil
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Length returns the number of blocks in the chain, genesis included.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Blocks returns a copy of the chain.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.chain))
	copy(blocks, db.chain)

	return blocks
}

// Records returns the record form of every block in the chain.
func (db *Database) Records() []BlockData {
	db.mu.RLock()
	defer db.mu.RUnlock()

	records := make([]BlockData, len(db.chain))
	for i, b := range db.chain {
		records[i] = NewBlockData(b)
	}

	return records
}

// Balance folds every transaction in every admitted block for the address.
// Negative balances are representable.
func (db *Database) Balance(address string) float64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var balance float64
	for _, b := range db.chain {
		balance += NetAmount(address, b.Transactions)
	}

	return balance
}

// Validate scans every block after genesis and reports each link, digest
// and difficulty failure instead of stopping at the first one.
func (db *Database) Validate() Report {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var err error
	for i := 1; i < len(db.chain); i++ {
		prev := db.chain[i-1]
		b := db.chain[i]

		if b.PrevHash != prev.Hash {
			err = multierr.Append(err, fmt.Errorf("block %d: previous hash %s does not match block %d hash %s", i, b.PrevHash, i-1, prev.Hash))
		}

		hash, derr := b.Digest()
		if derr != nil {
			err = multierr.Append(err, fmt.Errorf("block %d: unable to compute digest: %w", i, derr))
			continue
		}

		if b.Hash != hash {
			err = multierr.Append(err, fmt.Errorf("block %d: stored hash %s does not match digest %s", i, b.Hash, hash))
		}

		if !isHashSolved(b.Difficulty, b.Hash) {
			err = multierr.Append(err, fmt.Errorf("block %d: hash %s does not meet difficulty %d", i, b.Hash, b.Difficulty))
		}
	}

	errs := multierr.Errors(err)

	report := Report{
		Valid:       len(errs) == 0,
		TotalBlocks: len(db.chain),
		Errors:      make([]string, len(errs)),
	}
	for i, e := range errs {
		report.Errors[i] = e.Error()
	}

	return report
}
