package state

import "github.com/ardanlabs/powledger/foundation/keystore"

// CreateWallet generates a key pair held by the node and persists it.
func (s *State) CreateWallet() (keystore.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.wallets.Create()
	if err != nil {
		return keystore.Wallet{}, err
	}

	s.persistWallets()
	s.evHandler("state: CreateWallet: address[%s]", w.Address)

	return w, nil
}

// DeleteWallet removes a wallet held by the node. Deleting an unknown
// wallet succeeds; the result reports whether one was removed.
func (s *State) DeleteWallet(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.wallets.Delete(address) {
		return false
	}

	s.persistWallets()
	s.evHandler("state: DeleteWallet: address[%s]", address)

	return true
}

// persistWallets writes the wallet keys and reports failures so the node
// can carry on in memory. The caller must hold the lock.
func (s *State) persistWallets() {
	if err := s.saveWallets(); err != nil {
		s.evHandler("state: persistWallets: ERROR: %s", err)
	}
}
