package mempool_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name   string
		txs    []database.Tx
		remove int
		rest   []string
	}

	tt := []table{
		{
			name: "prefix",
			txs: []database.Tx{
				database.NewFaucetTx("a", "1"),
				database.NewFaucetTx("b", "2"),
				database.NewFaucetTx("c", "3"),
			},
			remove: 2,
			rest:   []string{"c"},
		},
		{
			name: "all",
			txs: []database.Tx{
				database.NewFaucetTx("a", "1"),
				database.NewFaucetTx("b", "2"),
			},
			remove: 5,
			rest:   nil,
		},
		{
			name: "none",
			txs: []database.Tx{
				database.NewFaucetTx("a", "1"),
			},
			remove: 0,
			rest:   []string{"a"},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for i, tx := range tst.txs {
						if n := mp.Upsert(tx); n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould get count %d after upsert, got %d.", failed, testID, i+1, n)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add transactions.", success, testID)

					txs := mp.Copy()
					for i, tx := range txs {
						if tx.ReceiverAddress != tst.txs[i].ReceiverAddress {
							t.Fatalf("\t%s\tTest %d:\tShould keep admission order at %d.", failed, testID, i)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep admission order.", success, testID)

					mp.RemovePrefix(tst.remove)
					rest := mp.Copy()
					if len(rest) != len(tst.rest) || mp.Count() != len(tst.rest) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d left, got %d.", failed, testID, len(tst.rest), len(rest))
					}
					for i, tx := range rest {
						if tx.ReceiverAddress != tst.rest[i] {
							t.Fatalf("\t%s\tTest %d:\tShould keep %s at %d, got %s.", failed, testID, tst.rest[i], i, tx.ReceiverAddress)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould remove only the prefix.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be empty after truncate.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be empty after truncate.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestCopyIsolated(t *testing.T) {
	mp := mempool.New()
	mp.Upsert(database.NewFaucetTx("a", "1"))

	txs := mp.Copy()
	txs[0].ReceiverAddress = "changed"

	if mp.Copy()[0].ReceiverAddress != "a" {
		t.Fatalf("\t%s\tShould not expose the pool through a copy.", failed)
	}
	t.Logf("\t%s\tShould not expose the pool through a copy.", success)
}
