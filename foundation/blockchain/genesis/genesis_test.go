package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()

	g, err := genesis.Load(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("\t%s\tShould fall back to defaults for a missing file: %v", failed, err)
	}
	if g != genesis.Default() {
		t.Fatalf("\t%s\tShould get the default parameters: %+v", failed, g)
	}
	t.Logf("\t%s\tShould fall back to defaults for a missing file.", success)

	path := filepath.Join(dir, "genesis.json")
	if err := os.WriteFile(path, []byte(`{"difficulty": 1, "mining_reward": 25}`), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	g, err = genesis.Load(path)
	if err != nil {
		t.Fatalf("\t%s\tShould load the genesis file: %v", failed, err)
	}
	if g.Difficulty != 1 || g.MiningReward != "25" || g.IncrementInterval != genesis.DefaultIncrementInterval {
		t.Fatalf("\t%s\tShould overlay the file on the defaults: %+v", failed, g)
	}
	t.Logf("\t%s\tShould overlay the file on the defaults.", success)

	if err := os.WriteFile(path, []byte(`{"increment_interval": 0}`), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}
	if _, err := genesis.Load(path); err == nil {
		t.Fatalf("\t%s\tShould reject a zero increment interval.", failed)
	}
	t.Logf("\t%s\tShould reject a zero increment interval.", success)
}

func Test_DifficultyAt(t *testing.T) {
	g := genesis.Default()

	type table struct {
		length int
		exp    int
	}

	tt := []table{
		{length: 1, exp: 3},
		{length: 9, exp: 3},
		{length: 10, exp: 4},
		{length: 19, exp: 4},
		{length: 25, exp: 5},
	}

	for testID, tst := range tt {
		if got := g.DifficultyAt(tst.length); got != tst.exp {
			t.Fatalf("\t%s\tTest %d:\tShould get difficulty %d at length %d, got %d.", failed, testID, tst.exp, tst.length, got)
		}
		t.Logf("\t%s\tTest %d:\tShould get difficulty %d at length %d.", success, testID, tst.exp, tst.length)
	}
}
