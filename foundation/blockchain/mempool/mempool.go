// Package mempool maintains the pool of transactions waiting to be mined.
// Transactions are kept in the order they were admitted since that order
// becomes the order inside the next block.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents an ordered cache of pending transactions.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert appends a transaction to the pool and returns the new count.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns the transactions in admission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Tx, len(mp.pool))
	copy(txs, mp.pool)

	return txs
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// RemovePrefix removes the first n transactions, the ones that were
// captured for a block that has now been admitted. Transactions that arrived
// after the capture stay in the pool.
func (mp *Mempool) RemovePrefix(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n >= len(mp.pool) {
		mp.pool = nil
		return
	}

	if n <= 0 {
		return
	}

	rest := make([]database.Tx, len(mp.pool)-n)
	copy(rest, mp.pool[n:])
	mp.pool = rest
}
