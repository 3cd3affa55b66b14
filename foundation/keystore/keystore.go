// Package keystore holds the private keys of the wallets a node manages on
// behalf of its users. Keys are persisted as a JSON object mapping each
// address to the hex encoding of its private key.
package keystore

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Wallet is the public view of a stored key.
type Wallet struct {
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
}

// KeyStore maintains the set of private keys keyed by address.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PrivateKey
}

// New constructs an empty key store.
func New() *KeyStore {
	return &KeyStore{
		keys: make(map[string]*ecdsa.PrivateKey),
	}
}

// Decode constructs a key store from its persisted form.
func Decode(data []byte) (*KeyStore, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode wallets: %w", err)
	}

	ks := New()
	for address, text := range m {
		privateKey, err := decodeKey(text)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", address, err)
		}

		if derived := signature.PublicKeyToAddress(&privateKey.PublicKey); derived != address {
			return nil, fmt.Errorf("wallet %s: key belongs to %s", address, derived)
		}

		ks.keys[address] = privateKey
	}

	return ks, nil
}

// Create generates a new key, stores it and returns its wallet.
func (ks *KeyStore) Create() (Wallet, error) {
	privateKey, err := signature.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generate key: %w", err)
	}

	w := Wallet{
		Address:   signature.PublicKeyToAddress(&privateKey.PublicKey),
		PublicKey: signature.EncodePublicKey(&privateKey.PublicKey),
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.keys[w.Address] = privateKey

	return w, nil
}

// Delete removes the key for the address. Deleting an unknown address is
// not an error; the result reports whether a key was removed.
func (ks *KeyStore) Delete(address string) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	_, exists := ks.keys[address]
	delete(ks.keys, address)

	return exists
}

// PrivateKey returns the key held for the address.
func (ks *KeyStore) PrivateKey(address string) (*ecdsa.PrivateKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	privateKey, exists := ks.keys[address]
	return privateKey, exists
}

// Addresses returns the sorted list of addresses held.
func (ks *KeyStore) Addresses() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	addrs := make([]string, 0, len(ks.keys))
	for address := range ks.keys {
		addrs = append(addrs, address)
	}
	sort.Strings(addrs)

	return addrs
}

// Encode returns the persisted form of the key store.
func (ks *KeyStore) Encode() ([]byte, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	m := make(map[string]string, len(ks.keys))
	for address, privateKey := range ks.keys {
		text, err := EncodePEM(privateKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", address, err)
		}
		m[address] = text
	}

	return json.MarshalIndent(m, "", "  ")
}

// =============================================================================

func decodeKey(text string) (*ecdsa.PrivateKey, error) {
	if isPEM(text) {
		return DecodePEM(text)
	}

	return signature.HexToPrivateKey(text)
}
