// keys.go - Twisted ElGamal keypair generation.
//
// A keypair is created once per confidential account. The secret scalar is
// held by the account owner only; the public key is stored on the account
// and is what senders encrypt transfer amounts against.

package elgamal

import (
	"errors"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
)

// PublicKeySize is the wire size of a compressed public key.
const PublicKeySize = 32

// ErrInvalidPublicKey is returned when public key bytes do not decode to a
// curve point.
var ErrInvalidPublicKey = errors.New("elgamal: invalid public key encoding")

// PublicKey is the point P = s^-1 * H.
type PublicKey struct {
	Point bn254.G1Affine
}

// Bytes returns the 32-byte compressed encoding.
func (pk PublicKey) Bytes() [PublicKeySize]byte {
	return pk.Point.Bytes()
}

// Equal reports whether two public keys are the same point.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.Point.Equal(&other.Point)
}

// PublicKeyFromBytes decodes a compressed public key.
func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	if len(data) != PublicKeySize {
		return PublicKey{}, ErrInvalidPublicKey
	}
	var p bn254.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return PublicKey{}, ErrInvalidPublicKey
	}
	return PublicKey{Point: p}, nil
}

// SecretKey is the secret scalar s. It never leaves the process.
type SecretKey struct {
	s fr.Element
}

// Scalar returns the secret scalar for proof construction.
func (sk SecretKey) Scalar() fr.Element {
	return sk.s
}

// Keypair bundles the two halves of an account encryption key.
type Keypair struct {
	Public PublicKey
	Secret SecretKey
}

// GenerateKeypair creates a keypair. A non-nil seed makes generation
// deterministic (tests, key recovery from a signing key); a nil seed draws
// cryptographically random key material.
func GenerateKeypair(seed []byte) (*Keypair, error) {
	var s fr.Element
	if seed != nil {
		s = curve.ScalarFromSeed(seed)
	} else {
		var err error
		s, err = curve.RandomScalar()
		if err != nil {
			return nil, err
		}
	}

	// P = s^-1 * H, so that s * D = r * H cancels the blinding term.
	var sInv fr.Element
	sInv.Inverse(&s)
	pub := curve.Mul(&curve.H, &sInv)

	return &Keypair{
		Public: PublicKey{Point: pub},
		Secret: SecretKey{s: s},
	}, nil
}
