package disk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/storage"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Storage(t *testing.T) {
	d, err := disk.New(filepath.Join(t.TempDir(), "5000"))
	if err != nil {
		t.Fatalf("Should be able to construct disk storage: %s", err)
	}

	type table struct {
		name string
		strg storage.Storage
	}

	tt := []table{
		{name: "disk", strg: d},
		{name: "memory", strg: memory.New()},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if _, err := tst.strg.Load("blockchain.json"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("\t%s\tShould get not found for a missing key: %v", failed, err)
			}
			t.Logf("\t%s\tShould get not found for a missing key.", success)

			if err := tst.strg.Save("blockchain.json", []byte("first")); err != nil {
				t.Fatalf("\t%s\tShould be able to save: %v", failed, err)
			}
			if err := tst.strg.Save("blockchain.json", []byte("second")); err != nil {
				t.Fatalf("\t%s\tShould be able to overwrite: %v", failed, err)
			}

			data, err := tst.strg.Load("blockchain.json")
			if err != nil || string(data) != "second" {
				t.Fatalf("\t%s\tShould load the latest value: %q, %v", failed, data, err)
			}
			t.Logf("\t%s\tShould load the latest value.", success)
		}

		t.Run(tst.name, f)
	}
}

func Test_DiskLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "5000")

	d, err := disk.New(dir)
	if err != nil {
		t.Fatalf("Should be able to construct disk storage: %s", err)
	}

	if err := d.Save("wallets.json", []byte("{}")); err != nil {
		t.Fatalf("Should be able to save: %s", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Should be able to read the directory: %s", err)
	}
	if len(entries) != 1 || entries[0].Name() != "wallets.json" {
		t.Fatalf("\t%s\tShould leave only the saved file behind: %v", failed, entries)
	}
	t.Logf("\t%s\tShould leave only the saved file behind.", success)

	if err := d.Save("../escape", []byte("x")); err == nil {
		t.Fatalf("\t%s\tShould reject a key outside the directory.", failed)
	}
	t.Logf("\t%s\tShould reject a key outside the directory.", success)
}
