// Package keypair implements the secp256k1 signing and verification
// used to authorize UTXO spends. Public keys double as account
// addresses: they are carried PEM-encoded, exactly as produced by
// PublicKey.MarshalPEM, everywhere an address string appears in the rest
// of the chain packages.
package keypair

import (
	"encoding/pem"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/Time0o/buenzlicoin/chain/digest"
	"github.com/Time0o/buenzlicoin/chain/errs"
)

// pemPublicKeyType and pemPrivateKeyType are the PEM block types used
// for marshalling. Keys are stored as their raw compressed/scalar
// encodings rather than ASN.1 SubjectPublicKeyInfo, because secp256k1
// is not one of the curves crypto/x509 knows how to describe.
const (
	pemPublicKeyType  = "SECP256K1 PUBLIC KEY"
	pemPrivateKeyType = "SECP256K1 PRIVATE KEY"
)

// maxSignatureLen is the largest a DER-encoded secp256k1 ECDSA
// signature can be.
const maxSignatureLen = 72

// PrivateKey signs digests on behalf of a single address.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey verifies signatures produced by the matching PrivateKey and
// serves as an address once PEM-encoded.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Generate creates a new random keypair.
func Generate() (PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return PrivateKey{}, errs.New(errs.CryptoError, "generating key: %s", err)
	}

	return PrivateKey{key: key}, nil
}

// Public returns the public half of the key.
func (pk PrivateKey) Public() PublicKey {
	return PublicKey{key: pk.key.PubKey()}
}

// Sign produces a DER-encoded ECDSA-SHA256 signature over d. The
// signature is at most maxSignatureLen bytes.
func (pk PrivateKey) Sign(d digest.Digest) (digest.Digest, []byte, error) {
	sig := ecdsa.Sign(pk.key, d[:])

	der := sig.Serialize()
	if len(der) > maxSignatureLen {
		return digest.Digest{}, nil, errs.New(errs.CryptoError, "signature exceeds %d bytes", maxSignatureLen)
	}

	return d, der, nil
}

// Verify reports whether sig is a valid DER-encoded signature over d
// produced by the private half of pub. A malformed sig fails with
// errs.CryptoError, distinct from a genuine signature mismatch, which
// returns (false, nil).
func (pub PublicKey) Verify(d digest.Digest, sig []byte) (bool, error) {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, errs.New(errs.CryptoError, "parsing signature: %s", err)
	}

	return parsed.Verify(d[:], pub.key), nil
}

// MarshalPEM encodes the public key as PEM text. This is the canonical
// address representation used throughout the chain packages.
func (pub PublicKey) MarshalPEM() string {
	block := &pem.Block{
		Type:  pemPublicKeyType,
		Bytes: pub.key.SerializeCompressed(),
	}

	return string(pem.EncodeToMemory(block))
}

// ParsePublicKeyPEM parses a PEM-encoded address string back into a
// PublicKey. Fails with errs.InvalidKey on any malformed input.
func ParsePublicKeyPEM(s string) (PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemPublicKeyType {
		return PublicKey{}, errs.New(errs.InvalidKey, "malformed PEM public key")
	}

	key, err := secp256k1.ParsePubKey(block.Bytes)
	if err != nil {
		return PublicKey{}, errs.New(errs.InvalidKey, "parsing public key: %s", err)
	}

	return PublicKey{key: key}, nil
}

// MarshalPEM encodes the private key as PEM text, for persisting a
// miner's signing key to disk.
func (pk PrivateKey) MarshalPEM() string {
	block := &pem.Block{
		Type:  pemPrivateKeyType,
		Bytes: pk.key.Serialize(),
	}

	return string(pem.EncodeToMemory(block))
}

// ParsePrivateKeyPEM parses a PEM-encoded private key produced by
// MarshalPEM.
func ParsePrivateKeyPEM(s string) (PrivateKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemPrivateKeyType {
		return PrivateKey{}, errs.New(errs.InvalidKey, "malformed PEM private key")
	}

	key := secp256k1.PrivKeyFromBytes(block.Bytes)

	return PrivateKey{key: key}, nil
}

// Address returns the PEM-encoded public key, read as an address
// string by the transaction and UTXO packages.
func (pub PublicKey) Address() string {
	return pub.MarshalPEM()
}
