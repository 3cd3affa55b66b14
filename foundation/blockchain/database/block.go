package database

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// Set of errors returned by block admission.
var (
	ErrPrevHashMismatch = errors.New("previous hash does not match the tip of the chain")
	ErrIndexMismatch    = errors.New("block index is not the next index")
	ErrInvalidProof     = errors.New("proof does not match the block digest")
	ErrProofNotSolved   = errors.New("proof does not meet the difficulty target")
)

// =============================================================================

// Block represents a group of transactions batched together. Difficulty and
// MiningTime are recorded after the search and are not part of the digest.
// Hash is only set once the block has been admitted to a chain.
type Block struct {
	Index        uint64
	Transactions []Tx
	TimeStamp    int64
	PrevHash     string
	Nonce        uint64
	Difficulty   int
	MiningTime   float64
	Hash         string
}

// NewBlock constructs a candidate block stamped with the current time.
func NewBlock(index uint64, txs []Tx, prevHash string, difficulty int) Block {
	return Block{
		Index:        index,
		Transactions: txs,
		TimeStamp:    time.Now().UTC().Unix(),
		PrevHash:     prevHash,
		Difficulty:   difficulty,
	}
}

// Genesis constructs the first block of a chain. Its hash is its digest and
// no proof of work is performed for it.
func Genesis(difficulty int) (Block, error) {
	b := NewBlock(0, []Tx{}, GenesisPrevHash, difficulty)

	hash, err := b.Digest()
	if err != nil {
		return Block{}, err
	}
	b.Hash = hash

	return b, nil
}

// Digest returns the hex SHA-256 of the canonical encoding of the index,
// nonce, previous hash, timestamp and transactions.
func (b Block) Digest() (string, error) {
	tmpl, err := newDigestTemplate(b)
	if err != nil {
		return "", err
	}

	return tmpl.digest(b.Nonce, nil), nil
}

// ValidateProof checks the proof is the digest of the block and that it
// satisfies the block's difficulty.
func (b Block) ValidateProof(proof string) error {
	hash, err := b.Digest()
	if err != nil {
		return err
	}

	if proof != hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrInvalidProof, proof, hash)
	}

	if !isHashSolved(b.Difficulty, proof) {
		return fmt.Errorf("%w: %s, difficulty %d", ErrProofNotSolved, proof, b.Difficulty)
	}

	return nil
}

// =============================================================================

// POW performs the work of mining to find a nonce whose digest satisfies the
// block's difficulty. The search starts at nonce zero and only stops when a
// solution is found or the context is cancelled. The returned block carries
// the nonce and the mining time, and the proof is returned for admission.
func POW(ctx context.Context, nb Block, ev func(v string, args ...any)) (Block, string, error) {
	ev("database: POW: MINING: started: blk[%d] difficulty[%d]", nb.Index, nb.Difficulty)
	defer ev("database: POW: MINING: completed: blk[%d]", nb.Index)

	// Log the transactions that are a part of this potential block.
	for _, tx := range nb.Transactions {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	tmpl, err := newDigestTemplate(nb)
	if err != nil {
		return Block{}, "", err
	}

	start := time.Now()
	buf := make([]byte, 0, len(tmpl.prefix)+len(tmpl.suffix)+20)

	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED")
			return Block{}, "", ctx.Err()
		}

		hash := tmpl.digest(nonce, buf)
		if !isHashSolved(nb.Difficulty, hash) {
			continue
		}

		nb.Nonce = nonce
		nb.MiningTime = time.Since(start).Seconds()

		ev("database: POW: MINING: SOLVED: nonce[%d] hash[%s] attempts[%d]", nonce, hash, attempts)
		return nb, hash, nil
	}
}

// isHashSolved checks the hash has at least difficulty leading zero hex
// characters.
func isHashSolved(difficulty int, hash string) bool {
	if difficulty <= 0 {
		return true
	}

	if len(hash) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == difficulty
}

// =============================================================================

// digestTemplate holds the canonical bytes surrounding the nonce so the
// search only re-renders the nonce on each attempt.
type digestTemplate struct {
	prefix []byte
	suffix []byte
}

func newDigestTemplate(b Block) (digestTemplate, error) {
	txs := b.Transactions
	if txs == nil {
		txs = []Tx{}
	}

	txData, err := canonical.Marshal(txs)
	if err != nil {
		return digestTemplate{}, err
	}

	var prefix bytes.Buffer
	prefix.WriteString(`{"index": `)
	prefix.WriteString(strconv.FormatUint(b.Index, 10))
	prefix.WriteString(`, "nonce": `)

	var suffix bytes.Buffer
	suffix.WriteString(`, "previous_hash": `)
	suffix.Write(canonical.String(b.PrevHash))
	suffix.WriteString(`, "timestamp": `)
	suffix.WriteString(strconv.FormatInt(b.TimeStamp, 10))
	suffix.WriteString(`, "transactions": `)
	suffix.Write(txData)
	suffix.WriteString(`}`)

	tmpl := digestTemplate{
		prefix: prefix.Bytes(),
		suffix: suffix.Bytes(),
	}

	return tmpl, nil
}

func (t digestTemplate) digest(nonce uint64, buf []byte) string {
	buf = append(buf[:0], t.prefix...)
	buf = strconv.AppendUint(buf, nonce, 10)
	buf = append(buf, t.suffix...)

	sum := hashing.SHA256(buf)
	return hex.EncodeToString(sum[:])
}

// =============================================================================

// BlockData is the record form of a block used for export, import and
// persistence. Every field of the block is carried.
type BlockData struct {
	Index        uint64  `json:"index"`
	Transactions []Tx    `json:"transactions"`
	TimeStamp    int64   `json:"timestamp"`
	PrevHash     string  `json:"previous_hash"`
	Nonce        uint64  `json:"nonce"`
	Difficulty   int     `json:"difficulty"`
	MiningTime   float64 `json:"mining_time"`
	Hash         string  `json:"hash"`
}

// NewBlockData constructs the record for a block.
func NewBlockData(b Block) BlockData {
	txs := make([]Tx, len(b.Transactions))
	copy(txs, b.Transactions)

	return BlockData{
		Index:        b.Index,
		Transactions: txs,
		TimeStamp:    b.TimeStamp,
		PrevHash:     b.PrevHash,
		Nonce:        b.Nonce,
		Difficulty:   b.Difficulty,
		MiningTime:   b.MiningTime,
		Hash:         b.Hash,
	}
}

// ToBlock converts a record back into a block.
func ToBlock(bd BlockData) Block {
	txs := make([]Tx, len(bd.Transactions))
	copy(txs, bd.Transactions)

	return Block{
		Index:        bd.Index,
		Transactions: txs,
		TimeStamp:    bd.TimeStamp,
		PrevHash:     bd.PrevHash,
		Nonce:        bd.Nonce,
		Difficulty:   bd.Difficulty,
		MiningTime:   bd.MiningTime,
		Hash:         bd.Hash,
	}
}
