// Package state is the core API for the blockchain and implements all the
// business rules and processing. A State value is the single owner of the
// chain, the pending pool, the known peers and the wallets held by the node.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage"
	"github.com/ardanlabs/powledger/foundation/keystore"
	"go.uber.org/multierr"
)

// Storage keys for the persisted node state.
const (
	ChainKey   = "blockchain.json"
	WalletsKey = "wallets.json"
)

// defaultPeerTimeout bounds every call made to a peer.
const defaultPeerTimeout = 3 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sharing transactions, blocks and peers.
type Worker interface {
	Shutdown()
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
	SignalSharePeers()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Self        peer.Peer
	Genesis     genesis.Genesis
	Storage     storage.Storage
	KnownPeers  *peer.PeerSet
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.RWMutex

	self      peer.Peer
	genesis   genesis.Genesis
	evHandler EventHandler
	client    *http.Client

	knownPeers *peer.PeerSet
	storage    storage.Storage
	db         *database.Database
	mempool    *mempool.Mempool
	wallets    *keystore.KeyStore

	Worker Worker
}

// New constructs a new blockchain for data management. Any chain snapshot
// and wallets found in storage are loaded; problems with them are reported
// through the event handler and the node starts from a fresh genesis.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	timeout := cfg.PeerTimeout
	if timeout <= 0 {
		timeout = defaultPeerTimeout
	}

	db, err := loadChain(cfg.Storage, cfg.Genesis, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		self:      cfg.Self,
		genesis:   cfg.Genesis,
		evHandler: ev,
		client:    &http.Client{Timeout: timeout},

		knownPeers: knownPeers,
		storage:    cfg.Storage,
		db:         db,
		mempool:    mempool.New(),
		wallets:    loadWallets(cfg.Storage, ev),

		Worker: noopWorker{},
	}

	// The Worker is a no-op here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all network activity.
	s.Worker.Shutdown()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return multierr.Combine(s.saveChain(), s.saveWallets())
}

// =============================================================================

// loadChain restores the chain snapshot from storage or builds a genesis
// block when there is none.
func loadChain(strg storage.Storage, gen genesis.Genesis, ev EventHandler) (*database.Database, error) {
	fresh := func() (*database.Database, error) {
		block, err := database.Genesis(gen.Difficulty)
		if err != nil {
			return nil, err
		}
		return database.New(block), nil
	}

	data, err := strg.Load(ChainKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			ev("state: loadChain: ERROR: %s", err)
		}
		return fresh()
	}

	var records []database.BlockData
	if err := json.Unmarshal(data, &records); err != nil {
		ev("state: loadChain: ERROR: decode: %s", err)
		return fresh()
	}

	db, err := database.FromRecords(records)
	if err != nil {
		ev("state: loadChain: ERROR: %s", err)
		return fresh()
	}

	if report := db.Validate(); !report.Valid {
		ev("state: loadChain: ERROR: invalid snapshot: %v", report.Errors)
		return fresh()
	}

	ev("state: loadChain: restored blocks[%d]", db.Length())
	return db, nil
}

// loadWallets restores the stored wallets or starts with none.
func loadWallets(strg storage.Storage, ev EventHandler) *keystore.KeyStore {
	data, err := strg.Load(WalletsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			ev("state: loadWallets: ERROR: %s", err)
		}
		return keystore.New()
	}

	ks, err := keystore.Decode(data)
	if err != nil {
		ev("state: loadWallets: ERROR: %s", err)
		return keystore.New()
	}

	ev("state: loadWallets: restored wallets[%d]", len(ks.Addresses()))
	return ks
}

// saveChain writes the chain snapshot. The caller must hold the lock.
func (s *State) saveChain() error {
	data, err := json.MarshalIndent(s.db.Records(), "", "  ")
	if err != nil {
		return err
	}

	return s.storage.Save(ChainKey, data)
}

// persistChain writes the chain snapshot and reports failures so the node
// can carry on in memory. The caller must hold the lock.
func (s *State) persistChain() {
	if err := s.saveChain(); err != nil {
		s.evHandler("state: persistChain: ERROR: %s", err)
	}
}

// saveWallets writes the wallet keys.
func (s *State) saveWallets() error {
	data, err := s.wallets.Encode()
	if err != nil {
		return err
	}

	return s.storage.Save(WalletsKey, data)
}

// =============================================================================

// noopWorker is used until a real worker registers itself.
type noopWorker struct{}

func (noopWorker) Shutdown() {}
func (noopWorker) SignalShareTx(database.Tx) {}
func (noopWorker) SignalShareBlock(database.Block) {}
func (noopWorker) SignalSharePeers() {}
