package commands

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Transactions prints the transactions of every block, or only the ones an
// address takes part in.
func Transactions(args []string, db *database.Database) error {
	var address string
	if len(args) == 3 {
		address = args[2]
	}

	for _, block := range db.Blocks() {
		for _, tx := range block.Transactions {
			if address != "" && tx.SenderAddress != address && tx.ReceiverAddress != address {
				continue
			}

			fmt.Printf("Block: %d  Kind: %s  From: %s  To: %s  Amount: %s\n",
				block.Index, tx.Kind(), tx.SenderAddress, tx.ReceiverAddress, tx.Amount)
		}
	}

	return nil
}

// Validate rechecks every block and prints the report.
func Validate(db *database.Database) error {
	report := db.Validate()

	fmt.Printf("Valid: %t  Blocks: %d\n", report.Valid, report.TotalBlocks)
	for _, e := range report.Errors {
		fmt.Println("  ", e)
	}

	if !report.Valid {
		return fmt.Errorf("%d problems found", len(report.Errors))
	}

	return nil
}
