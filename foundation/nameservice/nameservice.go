// Package nameservice reads a folder of wallet key files and creates a name
// service lookup for the addresses they belong to.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyExtension is the file extension of a wallet key file.
const KeyExtension = ".ecdsa"

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	addresses map[string]string
	names     map[string]string
}

// New constructs a name service with the wallets found under root. A root
// that does not exist yields an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]string),
		names:     make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != KeyExtension {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		address := signature.PublicKeyToAddress(&privateKey.PublicKey)
		name := strings.TrimSuffix(filepath.Base(fileName), KeyExtension)

		ns.addresses[address] = name
		ns.names[name] = address

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address, or the address itself
// when there is no name for it.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.addresses[address]
	if !exists {
		return address
	}
	return name
}

// Resolve returns the address for a name. Anything that is not a known name
// is returned unchanged so raw addresses can be used wherever a name can.
func (ns *NameService) Resolve(nameOrAddress string) string {
	address, exists := ns.names[nameOrAddress]
	if !exists {
		return nameOrAddress
	}
	return address
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
