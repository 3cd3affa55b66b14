// Package signature provides helper functions for handling the blockchain
// signature needs: secp256k1 key pairs, address derivation and the base64
// wire forms of public keys and signatures.
package signature

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the number of hex characters in an address.
const AddressLength = hashing.Size160 * 2

// Sizes of the public key encodings accepted on the wire.
const (
	rawPubKeyLen          = 64
	uncompressedPubKeyLen = 65
	compressedPubKeyLen   = 33
)

// sigLength is the size of an R||S signature without the recovery id.
const sigLength = crypto.RecoveryIDOffset

// secp256k1N and secp256k1HalfN are used to normalize signatures produced by
// signers that do not enforce low-S values.
var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// ErrInvalidPublicKey is returned when a public key can't be decoded.
var ErrInvalidPublicKey = errors.New("invalid public key")

// =============================================================================

// GenerateKey constructs a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyBytes returns the 64 byte X||Y encoding of the public key.
func PublicKeyBytes(publicKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(publicKey)[1:]
}

// EncodePublicKey returns the base64 wire form of the public key.
func EncodePublicKey(publicKey *ecdsa.PublicKey) string {
	return base64.StdEncoding.EncodeToString(PublicKeyBytes(publicKey))
}

// DecodePublicKey decodes the base64 wire form of a public key. The raw 64
// byte form, the 65 byte uncompressed form and the 33 byte compressed form
// are all accepted. The decoded bytes are returned exactly as supplied since
// the address is derived from them.
func DecodePublicKey(encoded string) ([]byte, *ecdsa.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	var publicKey *ecdsa.PublicKey
	switch len(raw) {
	case rawPubKeyLen:
		publicKey, err = crypto.UnmarshalPubkey(append([]byte{0x04}, raw...))
	case uncompressedPubKeyLen:
		publicKey, err = crypto.UnmarshalPubkey(raw)
	case compressedPubKeyLen:
		publicKey, err = crypto.DecompressPubkey(raw)
	default:
		err = fmt.Errorf("unexpected length %d", len(raw))
	}

	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	return raw, publicKey, nil
}

// Address derives the 40 character hex address for the raw public key bytes.
func Address(publicKey []byte) string {
	sha := hashing.SHA256(publicKey)
	ripemd := hashing.RIPEMD160(sha[:])

	return hex.EncodeToString(ripemd[:])
}

// PublicKeyToAddress derives the address for the public key.
func PublicKeyToAddress(publicKey *ecdsa.PublicKey) string {
	return Address(PublicKeyBytes(publicKey))
}

// Sign uses the specified private key to sign the 32 byte digest and returns
// the base64 encoded R||S signature. Nonces are derived deterministically.
func Sign(digest []byte, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(sig[:sigLength]), nil
}

// Verify reports whether the base64 signature over the digest was produced
// by the private key for the base64 public key. Any decoding failure is
// reported as false.
func Verify(encodedPublicKey string, encodedSig string, digest []byte) bool {
	_, publicKey, err := DecodePublicKey(encodedPublicKey)
	if err != nil {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(encodedSig)
	if err != nil {
		return false
	}

	switch len(sig) {
	case sigLength:
	case crypto.SignatureLength:
		sig = sig[:sigLength]
	default:
		return false
	}

	if len(digest) != crypto.DigestLength {
		return false
	}

	rs, ok := normalizeS(sig)
	if !ok {
		return false
	}

	return crypto.VerifySignature(crypto.FromECDSAPub(publicKey), digest, rs)
}

// =============================================================================

// PrivateKeyToHex returns the hex encoding of the private key.
func PrivateKeyToHex(privateKey *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(privateKey))
}

// HexToPrivateKey parses a hex encoded private key.
func HexToPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(hexKey)
}

// =============================================================================

// normalizeS returns a copy of the R||S signature with S mapped into the
// lower half of the curve order.
func normalizeS(sig []byte) ([]byte, bool) {
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return nil, false
	}

	if s.Cmp(secp256k1HalfN) > 0 {
		s.Sub(secp256k1N, s)
	}

	rs := make([]byte, sigLength)
	r.FillBytes(rs[:32])
	s.FillBytes(rs[32:])

	return rs, true
}
