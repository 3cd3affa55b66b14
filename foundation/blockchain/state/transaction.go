package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Set of errors returned by transaction admission.
var (
	ErrMissingSignature    = errors.New("transaction is not signed")
	ErrInvalidSignature    = errors.New("transaction signature verification failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSender       = errors.New("sender address is reserved for coins minted by a node")
)

// UpsertNodeTransaction accepts a transaction from a peer for inclusion.
// Balances are not checked and the transaction is not shared again.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.admitTransaction(tx)
}

// SubmitWalletTransaction accepts a transaction from a wallet for inclusion.
// When the transaction carries no signature and the node holds the sender's
// key, the node signs it. The sender must be able to cover the amount from
// the chain and the pending pool combined. Accepted transactions are shared
// with the known peers. Coinbase and faucet senders are never accepted from
// a wallet.
func (s *State) SubmitWalletTransaction(tx database.Tx) (database.Tx, error) {
	if tx.Kind() != database.KindTransfer {
		return database.Tx{}, fmt.Errorf("%w: %q", ErrInvalidSender, tx.SenderAddress)
	}

	if tx.Signature == "" {
		if privateKey, exists := s.wallets.PrivateKey(tx.SenderAddress); exists {
			if tx.SenderPubKey == "" {
				tx.SenderPubKey = signature.EncodePublicKey(&privateKey.PublicKey)
			}

			signed, err := tx.Sign(privateKey)
			if err != nil {
				return database.Tx{}, fmt.Errorf("sign: %w", err)
			}
			tx = signed
		}
	}

	if err := tx.Validate(); err != nil {
		return database.Tx{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	amount, _ := tx.Value()

	available := s.db.Balance(tx.SenderAddress) + database.NetAmount(tx.SenderAddress, s.mempool.Copy())
	if amount > available {
		return database.Tx{}, fmt.Errorf("%w: available %v, needed %v", ErrInsufficientBalance, available, amount)
	}

	if err := s.admitTransaction(tx); err != nil {
		return database.Tx{}, err
	}

	s.Worker.SignalShareTx(tx)

	return tx, nil
}

// SubmitFaucetTransaction queues a faucet credit for the address and shares
// it with the known peers.
func (s *State) SubmitFaucetTransaction(address string) (database.Tx, error) {
	tx := database.NewFaucetTx(address, s.genesis.FaucetAmount)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admitTransaction(tx); err != nil {
		return database.Tx{}, err
	}

	s.Worker.SignalShareTx(tx)

	return tx, nil
}

// =============================================================================

// admitTransaction applies the admission rules for the kind of transaction
// and appends it to the pending pool. The caller must hold the lock.
func (s *State) admitTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	switch tx.Kind() {
	case database.KindCoinbase, database.KindFaucet:

	default:
		if tx.Signature == "" {
			return ErrMissingSignature
		}

		if !tx.VerifySignature() {
			return ErrInvalidSignature
		}
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: admitTransaction: tx[%s] kind[%s] pending[%d]", tx, tx.Kind(), n)

	return nil
}
