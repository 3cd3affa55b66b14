package database_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

func noop(v string, args ...any) {}

// mine searches for a proof and admits the block to the database.
func mine(t *testing.T, db *database.Database, txs []database.Tx, difficulty int) database.Block {
	t.Helper()

	tip := db.LatestBlock()
	nb := database.NewBlock(tip.Index+1, txs, tip.Hash, difficulty)

	nb, proof, err := database.POW(context.Background(), nb, noop)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	block, err := db.Append(nb, proof)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to append the mined block: %v", failed, err)
	}

	return block
}

func newDatabase(t *testing.T) *database.Database {
	t.Helper()

	genesis, err := database.Genesis(2)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
	}

	return database.New(genesis)
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	genesis, err := database.Genesis(3)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
	}

	if genesis.Index != 0 || genesis.PrevHash != "0" || len(genesis.Transactions) != 0 || genesis.MiningTime != 0 || genesis.Difficulty != 3 {
		t.Fatalf("\t%s\tShould construct the genesis block with its fixed fields: %+v", failed, genesis)
	}

	hash, err := genesis.Digest()
	if err != nil || hash != genesis.Hash {
		t.Fatalf("\t%s\tShould set the genesis hash to its digest: %s != %s", failed, genesis.Hash, hash)
	}
	t.Logf("\t%s\tShould construct the genesis block.", success)
}

func Test_BlockDigest(t *testing.T) {
	txs := []database.Tx{
		database.NewCoinbaseTx("M", "50"),
		{SenderAddress: "a", SenderPubKey: "k", ReceiverAddress: "b", Amount: "1.25", Signature: "s"},
	}

	b := database.Block{
		Index:        7,
		Transactions: txs,
		TimeStamp:    1700000000,
		PrevHash:     "00abc",
		Nonce:        42,
		Difficulty:   3,
		MiningTime:   1.5,
	}

	fields := map[string]any{
		"index":         b.Index,
		"transactions":  b.Transactions,
		"timestamp":     b.TimeStamp,
		"previous_hash": b.PrevHash,
		"nonce":         b.Nonce,
	}
	data, err := canonical.Marshal(fields)
	if err != nil {
		t.Fatalf("Should be able to marshal the digest fields: %s", err)
	}
	sum := sha256.Sum256(data)
	exp := hex.EncodeToString(sum[:])

	got, err := b.Digest()
	if err != nil {
		t.Fatalf("Should be able to compute the digest: %s", err)
	}

	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("\t%s\tShould digest the canonical form of the five fields.", failed)
	}
	t.Logf("\t%s\tShould digest the canonical form of the five fields.", success)

	b.Difficulty = 9
	b.MiningTime = 99
	b.Hash = "whatever"
	if again, _ := b.Digest(); again != got {
		t.Fatalf("\t%s\tShould exclude difficulty, mining time and hash from the digest.", failed)
	}
	t.Logf("\t%s\tShould exclude difficulty, mining time and hash from the digest.", success)

	b.Nonce++
	if again, _ := b.Digest(); again == got {
		t.Fatalf("\t%s\tShould change the digest when the nonce changes.", failed)
	}
	t.Logf("\t%s\tShould change the digest when the nonce changes.", success)
}

func Test_POW(t *testing.T) {
	db := newDatabase(t)

	block := mine(t, db, []database.Tx{database.NewCoinbaseTx("M", "50")}, 3)

	if !strings.HasPrefix(block.Hash, "000") {
		t.Fatalf("\t%s\tShould get a hash with three leading zeros: %s", failed, block.Hash)
	}
	if err := block.ValidateProof(block.Hash); err != nil {
		t.Fatalf("\t%s\tShould validate the admitted proof: %v", failed, err)
	}
	if block.MiningTime < 0 {
		t.Fatalf("\t%s\tShould record a mining time: %v", failed, block.MiningTime)
	}
	t.Logf("\t%s\tShould mine a block meeting the difficulty.", success)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tip := db.LatestBlock()
	nb := database.NewBlock(tip.Index+1, nil, tip.Hash, 64)
	if _, _, err := database.POW(ctx, nb, noop); !errors.Is(err, context.Canceled) {
		t.Fatalf("\t%s\tShould stop the search when the context is cancelled: %v", failed, err)
	}
	t.Logf("\t%s\tShould stop the search when the context is cancelled.", success)
}

func Test_Append(t *testing.T) {
	db := newDatabase(t)
	mine(t, db, []database.Tx{database.NewFaucetTx("alice", "100")}, 2)

	tip := db.LatestBlock()
	before := db.Records()

	type table struct {
		name  string
		block func() (database.Block, string)
		exp   error
	}

	tt := []table{
		{
			name: "prevhash",
			block: func() (database.Block, string) {
				nb := database.NewBlock(tip.Index+1, nil, "ffff", 1)
				nb, proof, _ := database.POW(context.Background(), nb, noop)
				return nb, proof
			},
			exp: database.ErrPrevHashMismatch,
		},
		{
			name: "index",
			block: func() (database.Block, string) {
				nb := database.NewBlock(tip.Index+5, nil, tip.Hash, 1)
				nb, proof, _ := database.POW(context.Background(), nb, noop)
				return nb, proof
			},
			exp: database.ErrIndexMismatch,
		},
		{
			name: "proof",
			block: func() (database.Block, string) {
				nb := database.NewBlock(tip.Index+1, nil, tip.Hash, 1)
				return nb, strings.Repeat("0", 64)
			},
			exp: database.ErrInvalidProof,
		},
		{
			name: "difficulty",
			block: func() (database.Block, string) {
				nb := database.NewBlock(tip.Index+1, nil, tip.Hash, 64)
				proof, _ := nb.Digest()
				return nb, proof
			},
			exp: database.ErrProofNotSolved,
		},
	}

	t.Log("Given the need to reject blocks without mutating the chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				nb, proof := tst.block()

				_, err := db.Append(nb, proof)
				if !errors.Is(err, tst.exp) {
					t.Fatalf("\t%s\tTest %d:\tShould get %v, got %v.", failed, testID, tst.exp, err)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the block: %v", success, testID, err)

				if !reflect.DeepEqual(before, db.Records()) {
					t.Fatalf("\t%s\tTest %d:\tShould not modify the chain.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not modify the chain.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ChainInvariants(t *testing.T) {
	db := newDatabase(t)
	for i := 0; i < 4; i++ {
		mine(t, db, []database.Tx{database.NewCoinbaseTx("M", "50")}, 2)
	}

	blocks := db.Blocks()
	if len(blocks) != 5 || db.Length() != 5 {
		t.Fatalf("\t%s\tShould have five blocks, got %d.", failed, len(blocks))
	}

	for i := 1; i < len(blocks); i++ {
		if blocks[i].PrevHash != blocks[i-1].Hash {
			t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
		}

		hash, err := blocks[i].Digest()
		if err != nil || hash != blocks[i].Hash {
			t.Fatalf("\t%s\tShould store the digest of block %d as its hash.", failed, i)
		}

		if !strings.HasPrefix(hash, strings.Repeat("0", blocks[i].Difficulty)) {
			t.Fatalf("\t%s\tShould meet the difficulty of block %d.", failed, i)
		}
	}
	t.Logf("\t%s\tShould link every block and store its solved digest.", success)

	if got := db.Balance("M"); got != 200 {
		t.Fatalf("\t%s\tShould get a balance of 200, got %v.", failed, got)
	}
	t.Logf("\t%s\tShould fold the balance over the admitted blocks.", success)
}

func Test_Validate(t *testing.T) {
	db := newDatabase(t)
	mine(t, db, []database.Tx{database.NewCoinbaseTx("M", "50")}, 2)
	mine(t, db, []database.Tx{database.NewCoinbaseTx("M", "50")}, 2)

	first := db.Validate()
	second := db.Validate()

	if !first.Valid || first.TotalBlocks != 3 || len(first.Errors) != 0 {
		t.Fatalf("\t%s\tShould report a valid chain: %+v", failed, first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("\t%s\tShould get identical reports on an unchanged chain.", failed)
	}
	t.Logf("\t%s\tShould get identical valid reports on an unchanged chain.", success)

	records := db.Records()
	records[1].Transactions[0].Amount = "5000"
	records[2].PrevHash = "00bad"

	tampered, err := database.FromRecords(records)
	if err != nil {
		t.Fatalf("Should be able to load the tampered records: %s", err)
	}

	report := tampered.Validate()
	if report.Valid || len(report.Errors) < 3 {
		t.Fatalf("\t%s\tShould report every failure: %+v", failed, report)
	}
	t.Logf("\t%s\tShould report every failure: %d errors.", success, len(report.Errors))
}

func Test_RoundTrip(t *testing.T) {
	db := newDatabase(t)
	mine(t, db, []database.Tx{database.NewCoinbaseTx("M", "50"), database.NewFaucetTx("alice", "12.500")}, 2)
	mine(t, db, []database.Tx{{SenderAddress: "alice", SenderPubKey: "k", ReceiverAddress: "b", Amount: "1e2", Signature: "s"}}, 2)

	data, err := json.Marshal(db.Records())
	if err != nil {
		t.Fatalf("Should be able to marshal the records: %s", err)
	}

	var records []database.BlockData
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Should be able to unmarshal the records: %s", err)
	}

	restored, err := database.FromRecords(records)
	if err != nil {
		t.Fatalf("Should be able to restore the chain: %s", err)
	}

	firstCanon, err := canonical.Marshal(db.Records())
	if err != nil {
		t.Fatalf("Should be able to encode the original chain: %s", err)
	}
	secondCanon, err := canonical.Marshal(restored.Records())
	if err != nil {
		t.Fatalf("Should be able to encode the restored chain: %s", err)
	}

	if !bytes.Equal(firstCanon, secondCanon) {
		t.Logf("got: %s", secondCanon)
		t.Logf("exp: %s", firstCanon)
		t.Fatalf("\t%s\tShould reproduce the chain byte for byte.", failed)
	}
	t.Logf("\t%s\tShould reproduce the chain byte for byte.", success)

	if report := restored.Validate(); !report.Valid {
		t.Fatalf("\t%s\tShould restore a valid chain: %+v", failed, report)
	}
	t.Logf("\t%s\tShould restore a valid chain.", success)

	if _, err := database.FromRecords(nil); !errors.Is(err, database.ErrEmptyChain) {
		t.Fatalf("\t%s\tShould refuse an empty chain: %v", failed, err)
	}
	t.Logf("\t%s\tShould refuse an empty chain.", success)
}
