package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const nonceDerivationTag = "ernest-oracle/nonce"

// Signer wraps the oracle's long-term key and implements the BIP340 signing
// capability the lifecycle manager needs: sign a message outright, or sign it
// with a nonce that was committed to at announcement time. Nonce secrets are
// derived deterministically from the key and an oracle-wide nonce index, so
// they are never stored.
type Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSigner parses a 32-byte hex encoded secret key.
func NewSigner(hexKey string) (*Signer, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid oracle key: expected 32 bytes, got %d", len(raw))
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("invalid oracle key: zero scalar")
	}
	return &Signer{priv: priv}, nil
}

// PublicKey returns the oracle's x-only public key.
func (s *Signer) PublicKey() []byte {
	return schnorr.SerializePubKey(s.priv.PubKey())
}

// PublicKeyHex returns the oracle's x-only public key as hex.
func (s *Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.PublicKey())
}

// nonceScalar derives the secret nonce for an oracle-wide nonce index.
func (s *Signer) nonceScalar(index uint32) *secp256k1.ModNScalar {
	var indexBytes [4]byte
	binary.BigEndian.PutUint32(indexBytes[:], index)
	seed := s.priv.Serialize()

	k := new(secp256k1.ModNScalar)
	for counter := byte(0); ; counter++ {
		digest := taggedHash(nonceDerivationTag, seed, indexBytes[:], []byte{counter})
		k.SetBytes(&digest)
		if !k.IsZero() {
			return k
		}
	}
}

// NoncePoint returns the committed public nonce point (x-only, 32 bytes) for
// an oracle-wide nonce index.
func (s *Signer) NoncePoint(index uint32) []byte {
	k := s.nonceScalar(index)
	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &point)
	point.ToAffine()

	var buf [32]byte
	point.X.PutBytes(&buf)
	return buf[:]
}

// SignWithNonce produces a BIP340 signature over hash using the committed
// nonce at the given index. The resulting signature's R matches the
// previously published nonce point.
func (s *Signer) SignWithNonce(index uint32, hash [32]byte) ([]byte, error) {
	d := new(secp256k1.ModNScalar).Set(&s.priv.Key)
	pub := s.priv.PubKey()
	if pub.SerializeCompressed()[0] == secp256k1.PubKeyFormatCompressedOdd {
		d.Negate()
	}

	k := s.nonceScalar(index)
	var noncePoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &noncePoint)
	noncePoint.ToAffine()
	if noncePoint.Y.IsOdd() {
		k.Negate()
	}

	var rBytes [32]byte
	noncePoint.X.PutBytes(&rBytes)

	challenge := taggedHash("BIP0340/challenge", rBytes[:], schnorr.SerializePubKey(pub), hash[:])
	var e secp256k1.ModNScalar
	e.SetBytes(&challenge)

	// s = k + e*d mod n
	sig := new(secp256k1.ModNScalar).Mul2(&e, d).Add(k)
	return schnorr.NewSignature(&noncePoint.X, sig).Serialize(), nil
}

// SignMessage signs hash with the long-term key using the library's own
// nonce generation. Used for announcement signatures.
func (s *Signer) SignMessage(hash [32]byte) ([]byte, error) {
	sig, err := schnorr.Sign(s.priv, hash[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// taggedHash computes the BIP340 style tagged hash of the concatenated data.
func taggedHash(tag string, data ...[]byte) [32]byte {
	tagDigest := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagDigest[:])
	h.Write(tagDigest[:])
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
