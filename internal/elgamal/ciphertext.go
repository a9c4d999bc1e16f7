// ciphertext.go - Ciphertext representation and homomorphic arithmetic.

package elgamal

import (
	"errors"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// CiphertextSize is the wire size of a ciphertext: 32-byte commitment
// followed by the 32-byte decryption handle.
const CiphertextSize = 64

// ErrInvalidCiphertext is returned when ciphertext bytes do not decode.
var ErrInvalidCiphertext = errors.New("elgamal: invalid ciphertext encoding")

// DecryptHandle is the key-bound half of a ciphertext: D = r * P.
type DecryptHandle struct {
	Point bn254.G1Affine
}

// NewHandle binds an opening's blinding factor to a public key.
func NewHandle(pk PublicKey, o *pedersen.Opening) DecryptHandle {
	r := o.Scalar()
	return DecryptHandle{Point: curve.Mul(&pk.Point, &r)}
}

// Ciphertext is an encrypted non-negative amount under one public key.
// Ciphertexts are immutable; arithmetic always derives a new one.
type Ciphertext struct {
	Commitment pedersen.Commitment
	Handle     DecryptHandle
}

// Add returns the encryption of the sum of two amounts. Both ciphertexts
// must be under the same public key; the engine cannot check this.
func (ct *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	var d bn254.G1Affine
	d.Add(&ct.Handle.Point, &other.Handle.Point)
	return &Ciphertext{
		Commitment: *ct.Commitment.Add(&other.Commitment),
		Handle:     DecryptHandle{Point: d},
	}
}

// Sub returns the encryption of the difference of two amounts. Subtracting
// a larger amount from a smaller one underflows silently: the result is a
// well-formed ciphertext of a huge value that bounded decryption will
// report as unknown. Callers must check sufficiency before subtracting.
func (ct *Ciphertext) Sub(other *Ciphertext) *Ciphertext {
	d := curve.Sub(&ct.Handle.Point, &other.Handle.Point)
	return &Ciphertext{
		Commitment: *ct.Commitment.Sub(&other.Commitment),
		Handle:     DecryptHandle{Point: d},
	}
}

// AddAmount folds a public plaintext amount into the ciphertext without
// touching the handle: (C + v*G, D). Used for deposits from the public
// balance, where the amount is visible on the wire anyway.
func (ct *Ciphertext) AddAmount(amount uint64) *Ciphertext {
	vG := curve.MulUint64(&curve.G, amount)
	var c bn254.G1Affine
	c.Add(&ct.Commitment.Point, &vG)
	return &Ciphertext{
		Commitment: pedersen.Commitment{Point: c},
		Handle:     ct.Handle,
	}
}

// SubAmount removes a public plaintext amount: (C - v*G, D). Used for
// withdrawals, where the withdrawn amount is public.
func (ct *Ciphertext) SubAmount(amount uint64) *Ciphertext {
	vG := curve.MulUint64(&curve.G, amount)
	c := curve.Sub(&ct.Commitment.Point, &vG)
	return &Ciphertext{
		Commitment: pedersen.Commitment{Point: c},
		Handle:     ct.Handle,
	}
}

// Bytes returns the 64-byte wire encoding: commitment then handle.
func (ct *Ciphertext) Bytes() [CiphertextSize]byte {
	var out [CiphertextSize]byte
	c := ct.Commitment.Bytes()
	d := ct.Handle.Point.Bytes()
	copy(out[:32], c[:])
	copy(out[32:], d[:])
	return out
}

// CiphertextFromBytes decodes a 64-byte ciphertext.
func CiphertextFromBytes(data []byte) (*Ciphertext, error) {
	if len(data) != CiphertextSize {
		return nil, ErrInvalidCiphertext
	}
	c, err := pedersen.FromBytes(data[:32])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	var d bn254.G1Affine
	if _, err := d.SetBytes(data[32:]); err != nil {
		return nil, ErrInvalidCiphertext
	}
	return &Ciphertext{Commitment: *c, Handle: DecryptHandle{Point: d}}, nil
}
