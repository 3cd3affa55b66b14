package database

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Sender sentinels for transactions that mint value.
const (
	SenderCoinbase = "COINBASE"
	SenderFaucet   = "FAUCET"
)

// TxKind tags the variant a transaction belongs to.
type TxKind int

// Set of transaction kinds.
const (
	KindTransfer TxKind = iota
	KindCoinbase
	KindFaucet
)

// String implements the fmt.Stringer interface.
func (k TxKind) String() string {
	switch k {
	case KindCoinbase:
		return "coinbase"
	case KindFaucet:
		return "faucet"
	default:
		return "transfer"
	}
}

// Set of errors returned by transaction validation.
var (
	ErrMissingReceiver = errors.New("receiver address is required")
	ErrInvalidAmount   = errors.New("amount must be a finite, non-negative number")
)

// =============================================================================

// Tx is a value transfer between two parties. Coinbase and faucet
// transactions carry no sender key and no signature. Empty strings are
// encoded as null on the wire.
type Tx struct {
	SenderAddress   string
	SenderPubKey    string
	ReceiverAddress string
	Amount          json.Number
	Signature       string
}

// NewTransferTx constructs an unsigned transfer from the owner of the
// public key to the receiver.
func NewTransferTx(publicKey *ecdsa.PublicKey, receiver string, amount json.Number) (Tx, error) {
	tx := Tx{
		SenderAddress:   signature.PublicKeyToAddress(publicKey),
		SenderPubKey:    signature.EncodePublicKey(publicKey),
		ReceiverAddress: receiver,
		Amount:          amount,
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// NewCoinbaseTx constructs the reward transaction for a mined block.
func NewCoinbaseTx(miner string, reward json.Number) Tx {
	return Tx{
		SenderAddress:   SenderCoinbase,
		ReceiverAddress: miner,
		Amount:          reward,
	}
}

// NewFaucetTx constructs a free credit for the receiver.
func NewFaucetTx(receiver string, amount json.Number) Tx {
	return Tx{
		SenderAddress:   SenderFaucet,
		ReceiverAddress: receiver,
		Amount:          amount,
	}
}

// Kind reports which variant the transaction belongs to. A transaction
// without a sender is treated as a coinbase.
func (tx Tx) Kind() TxKind {
	switch tx.SenderAddress {
	case "", SenderCoinbase:
		return KindCoinbase
	case SenderFaucet:
		return KindFaucet
	default:
		return KindTransfer
	}
}

// Validate checks the fields every kind of transaction must carry.
func (tx Tx) Validate() error {
	if tx.ReceiverAddress == "" {
		return ErrMissingReceiver
	}

	if _, err := tx.Value(); err != nil {
		return err
	}

	return nil
}

// Value returns the amount as a float.
func (tx Tx) Value() (float64, error) {
	v, err := strconv.ParseFloat(tx.Amount.String(), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, tx.Amount)
	}

	return v, nil
}

// Digest returns the SHA-256 of the canonical encoding of every field except
// the signature. The raw bytes are the message that gets signed.
func (tx Tx) Digest() ([]byte, error) {
	fields := struct {
		SenderAddress   *string     `json:"sender_address"`
		SenderPubKey    *string     `json:"sender_pubkey"`
		ReceiverAddress *string     `json:"receiver_address"`
		Amount          json.Number `json:"amount"`
	}{
		SenderAddress:   optional(tx.SenderAddress),
		SenderPubKey:    optional(tx.SenderPubKey),
		ReceiverAddress: optional(tx.ReceiverAddress),
		Amount:          tx.Amount,
	}

	data, err := canonical.Marshal(fields)
	if err != nil {
		return nil, err
	}

	digest := hashing.SHA256(data)
	return digest[:], nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	digest, err := tx.Digest()
	if err != nil {
		return Tx{}, err
	}

	sig, err := signature.Sign(digest, privateKey)
	if err != nil {
		return Tx{}, err
	}

	tx.Signature = sig
	return tx, nil
}

// VerifySignature reports whether the transaction was signed by the key
// embedded in it and whether that key belongs to the sender address.
func (tx Tx) VerifySignature() bool {
	raw, _, err := signature.DecodePublicKey(tx.SenderPubKey)
	if err != nil {
		return false
	}

	if signature.Address(raw) != tx.SenderAddress {
		return false
	}

	digest, err := tx.Digest()
	if err != nil {
		return false
	}

	return signature.Verify(tx.SenderPubKey, tx.Signature, digest)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	from := tx.SenderAddress
	if from == "" {
		from = SenderCoinbase
	}

	return fmt.Sprintf("%s->%s:%s", from, tx.ReceiverAddress, tx.Amount)
}

// =============================================================================

type txWire struct {
	SenderAddress   *string     `json:"sender_address"`
	SenderPubKey    *string     `json:"sender_pubkey"`
	ReceiverAddress *string     `json:"receiver_address"`
	Amount          json.Number `json:"amount"`
	Signature       *string     `json:"signature"`
}

// MarshalJSON implements the json.Marshaler interface.
func (tx Tx) MarshalJSON() ([]byte, error) {
	w := txWire{
		SenderAddress:   optional(tx.SenderAddress),
		SenderPubKey:    optional(tx.SenderPubKey),
		ReceiverAddress: optional(tx.ReceiverAddress),
		Amount:          tx.Amount,
		Signature:       optional(tx.Signature),
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements the json.Unmarshaler interface. The amount must
// be a JSON number.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var w struct {
		txWire
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	amount, err := ParseAmount(w.Amount)
	if err != nil {
		return err
	}

	*tx = Tx{
		SenderAddress:   deref(w.SenderAddress),
		SenderPubKey:    deref(w.SenderPubKey),
		ReceiverAddress: deref(w.ReceiverAddress),
		Amount:          amount,
		Signature:       deref(w.Signature),
	}

	return nil
}

// ParseAmount reads an amount from its raw JSON text, keeping the number
// text as sent. A missing or null amount is returned empty. Quoted amounts
// are rejected since the digest is computed over the number form.
func ParseAmount(raw json.RawMessage) (json.Number, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	if raw[0] == '"' {
		return "", fmt.Errorf("%w: quoted amount %s", ErrInvalidAmount, raw)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
	}

	return n, nil
}

// NetAmount folds the transactions into the net value they move for the
// address: received amounts are added, sent amounts subtracted.
func NetAmount(address string, txs []Tx) float64 {
	var net float64
	for _, tx := range txs {
		v, err := tx.Value()
		if err != nil {
			continue
		}

		if tx.ReceiverAddress == address {
			net += v
		}
		if tx.SenderAddress == address {
			net -= v
		}
	}

	return net
}

// FormatAmount renders a float as JSON number text.
func FormatAmount(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
