package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// RetrieveSelf returns the peer identity of this node.
func (s *State) RetrieveSelf() peer.Peer {
	return s.self
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.LatestBlock()
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Length()
}

// RetrieveChainRecords returns the record form of the full chain.
func (s *State) RetrieveChainRecords() []database.BlockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Records()
}

// RetrieveMempool returns a copy of the mempool in admission order.
func (s *State) RetrieveMempool() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list, excluding
// this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.self)
}
