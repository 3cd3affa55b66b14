package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ErrChainRejected is returned when a remote chain is not adopted.
var ErrChainRejected = errors.New("chain rejected")

// AdoptChain replaces the local chain with the exported chain of a peer. The
// remote chain must start with a genesis block and pass validation, and is
// only taken when the local chain holds nothing but its genesis block or the
// remote chain is longer. The pending pool is left untouched.
func (s *State) AdoptChain(records []database.BlockData) error {
	remote, err := database.FromRecords(records)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChainRejected, err)
	}

	if first := records[0]; first.Index != 0 || first.PrevHash != database.GenesisPrevHash {
		return fmt.Errorf("%w: first block is not a genesis block", ErrChainRejected)
	}

	if report := remote.Validate(); !report.Valid {
		return fmt.Errorf("%w: %s", ErrChainRejected, strings.Join(report.Errors, "; "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	local := s.db.Length()
	if local > 1 && remote.Length() <= local {
		return fmt.Errorf("%w: remote length %d does not exceed local length %d", ErrChainRejected, remote.Length(), local)
	}

	s.db = remote
	s.persistChain()

	s.evHandler("state: AdoptChain: adopted blocks[%d] replacing blocks[%d]", remote.Length(), local)

	return nil
}
