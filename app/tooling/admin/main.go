// This program performs administrative tasks against a node's chain snapshot.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 3 {
		return errors.New("usage: admin <data dir> bals|trans|validate [address]")
	}

	log.Infow("startup", "version", build, "data", os.Args[1])

	db, err := loadChain(os.Args[1])
	if err != nil {
		return err
	}

	return processCommands(os.Args[1:], db)
}

// loadChain reads the chain snapshot a node saved in the directory.
func loadChain(dir string) (*database.Database, error) {
	strg, err := disk.New(dir)
	if err != nil {
		return nil, err
	}

	data, err := strg.Load(state.ChainKey)
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	var records []database.BlockData
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding chain: %w", err)
	}

	return database.FromRecords(records)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, db *database.Database) error {
	switch args[1] {
	case "bals":
		if err := commands.Balances(args, db); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args, db); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "validate":
		if err := commands.Validate(db); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
