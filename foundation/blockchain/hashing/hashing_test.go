package hashing_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
	"golang.org/x/crypto/ripemd160"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_SHA256(t *testing.T) {
	type table struct {
		name  string
		input string
		exp   string
	}

	tt := []table{
		{
			name:  "empty",
			input: "",
			exp:   "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "abc",
			input: "abc",
			exp:   "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  "56bytes",
			input: "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			exp:   "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
		{
			name:  "fox",
			input: "The quick brown fox jumps over the lazy dog",
			exp:   "d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592",
		},
		{
			name:  "million",
			input: strings.Repeat("a", 1_000_000),
			exp:   "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0",
		},
	}

	t.Log("Given the need to validate the SHA-256 digest against the reference vectors.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				digest := hashing.SHA256([]byte(tst.input))
				got := hex.EncodeToString(digest[:])

				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the reference digest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the reference digest.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_RIPEMD160(t *testing.T) {
	type table struct {
		name  string
		input string
		exp   string
	}

	tt := []table{
		{
			name:  "empty",
			input: "",
			exp:   "9c1185a5c5e9fc54612808977ee8f548b2258d31",
		},
		{
			name:  "abc",
			input: "abc",
			exp:   "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc",
		},
		{
			name:  "message-digest",
			input: "message digest",
			exp:   "5d0689ef49d2fae572b881b123a85ffa21595f36",
		},
		{
			name:  "a-z",
			input: "abcdefghijklmnopqrstuvwxyz",
			exp:   "f71c27109c692c1b56bbdceb5b9d2865b3708dbc",
		},
	}

	t.Log("Given the need to validate the RIPEMD-160 digest against the reference vectors.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				digest := hashing.RIPEMD160([]byte(tst.input))
				got := hex.EncodeToString(digest[:])

				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the reference digest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the reference digest.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

// Test_PaddingBoundaries compares both digests with independent
// implementations for every length around the one and two block boundaries.
func Test_PaddingBoundaries(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}

	for n := 0; n <= len(data); n++ {
		input := data[:n]

		gotSHA := hashing.SHA256(input)
		expSHA := sha256.Sum256(input)
		if gotSHA != expSHA {
			t.Fatalf("\t%s\tShould match SHA-256 for length %d: got %x exp %x", failed, n, gotSHA, expSHA)
		}

		gotRMD := hashing.RIPEMD160(input)
		h := ripemd160.New()
		h.Write(input)
		if expRMD := h.Sum(nil); hex.EncodeToString(gotRMD[:]) != hex.EncodeToString(expRMD) {
			t.Fatalf("\t%s\tShould match RIPEMD-160 for length %d: got %x exp %x", failed, n, gotRMD, expRMD)
		}
	}
	t.Logf("\t%s\tShould match the independent implementations for lengths 0..%d.", success, len(data))
}

func Test_Pure(t *testing.T) {
	input := []byte("repeatable")
	snapshot := append([]byte(nil), input...)

	if hashing.SHA256(input) != hashing.SHA256(input) {
		t.Fatalf("\t%s\tShould get the same SHA-256 digest twice.", failed)
	}
	if hashing.RIPEMD160(input) != hashing.RIPEMD160(input) {
		t.Fatalf("\t%s\tShould get the same RIPEMD-160 digest twice.", failed)
	}
	if string(input) != string(snapshot) {
		t.Fatalf("\t%s\tShould not modify the input.", failed)
	}
	t.Logf("\t%s\tShould be deterministic and leave the input untouched.", success)
}
