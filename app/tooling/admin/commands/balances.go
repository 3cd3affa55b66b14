// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Balances prints the balance of every address seen on the chain, or of the
// single address given.
func Balances(args []string, db *database.Database) error {
	var onlyAddress string
	if len(args) == 3 {
		onlyAddress = args[2]
	}

	fmt.Printf("LatestBlockHash: %s\n\n", db.LatestBlock().Hash)

	seen := make(map[string]struct{})
	for _, block := range db.Blocks() {
		for _, tx := range block.Transactions {
			for _, address := range []string{tx.SenderAddress, tx.ReceiverAddress} {
				if tx.Kind() != database.KindTransfer && address == tx.SenderAddress {
					continue
				}
				seen[address] = struct{}{}
			}
		}
	}

	addresses := make([]string, 0, len(seen))
	for address := range seen {
		if onlyAddress == "" || address == onlyAddress {
			addresses = append(addresses, address)
		}
	}
	sort.Strings(addresses)

	for _, address := range addresses {
		fmt.Printf("Address: %s  Balance: %v\n", address, db.Balance(address))
	}

	return nil
}
