package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	dir := t.TempDir()

	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	if err := crypto.SaveECDSA(filepath.Join(dir, "alice.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatalf("Should be able to write a stray file: %s", err)
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the folder: %v", failed, err)
	}

	address := signature.PublicKeyToAddress(&pk.PublicKey)

	if ns.Lookup(address) != "alice" || ns.Resolve("alice") != address {
		t.Fatalf("\t%s\tShould map the key file name to its address.", failed)
	}
	if ns.Lookup("abc") != "abc" || ns.Resolve("abc") != "abc" {
		t.Fatalf("\t%s\tShould pass unknown values through.", failed)
	}
	if len(ns.Copy()) != 1 {
		t.Fatalf("\t%s\tShould only load key files.", failed)
	}
	t.Logf("\t%s\tShould map the key file name to its address.", success)

	empty, err := nameservice.New(filepath.Join(dir, "missing"))
	if err != nil || len(empty.Copy()) != 0 {
		t.Fatalf("\t%s\tShould treat a missing folder as empty: %v", failed, err)
	}
	t.Logf("\t%s\tShould treat a missing folder as empty.", success)
}
