package keystore

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// pemType is the PEM block type of a SEC1 private key.
const pemType = "EC PRIVATE KEY"

// oidSecp256k1 names the secp256k1 curve in SEC1 key parameters.
var oidSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}

// ecPrivateKey is the SEC1 (RFC 5915) ECPrivateKey structure.
type ecPrivateKey struct {
	Version       int
	PrivateKey    []byte
	NamedCurveOID asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey     asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

// EncodePEM renders the private key as SEC1 PEM text.
func EncodePEM(privateKey *ecdsa.PrivateKey) (string, error) {
	pub := crypto.FromECDSAPub(&privateKey.PublicKey)

	der, err := asn1.Marshal(ecPrivateKey{
		Version:       1,
		PrivateKey:    crypto.FromECDSA(privateKey),
		NamedCurveOID: oidSecp256k1,
		PublicKey:     asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
	if err != nil {
		return "", fmt.Errorf("marshal key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der})), nil
}

// DecodePEM parses SEC1 PEM text holding a secp256k1 private key.
func DecodePEM(text string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(text))
	if block == nil || block.Type != pemType {
		return nil, errors.New("no EC PRIVATE KEY block found")
	}

	var key ecPrivateKey
	if _, err := asn1.Unmarshal(block.Bytes, &key); err != nil {
		return nil, fmt.Errorf("unmarshal key: %w", err)
	}

	if key.Version != 1 {
		return nil, fmt.Errorf("unsupported key version %d", key.Version)
	}

	if len(key.NamedCurveOID) > 0 && !key.NamedCurveOID.Equal(oidSecp256k1) {
		return nil, fmt.Errorf("unsupported curve %s", key.NamedCurveOID)
	}

	return crypto.ToECDSA(key.PrivateKey)
}

// isPEM reports whether the stored key text is PEM rather than hex.
func isPEM(text string) bool {
	return bytes.HasPrefix(bytes.TrimSpace([]byte(text)), []byte("-----BEGIN"))
}
