// curve.go - Shared BN254 group parameters for the confidential transfer core.
//
// All commitments, ciphertexts and proofs in this module live in BN254 G1.
// Two fixed generators are used: G (the standard generator, binds amounts)
// and H (binds blinding factors). H is derived by hashing to the curve so
// that its discrete log with respect to G is unknown.

package curve

import (
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"
)

// RangeBits is the bit width of provable amounts: committed values lie in
// [0, 2^RangeBits).
const RangeBits = 64

var (
	// G is the standard BN254 G1 generator; commits the amount.
	G bn254.G1Affine
	// H is the blinding generator, hashed to the curve from a fixed tag.
	H bn254.G1Affine

	// Vector bases for the range proof bit decomposition.
	rangeGensG []bn254.G1Affine
	rangeGensH []bn254.G1Affine
)

func init() {
	_, _, g1, _ := bn254.Generators()
	G = g1
	H = hashToPoint([]byte("confidential-transfer:pedersen-H"))

	rangeGensG = make([]bn254.G1Affine, RangeBits)
	rangeGensH = make([]bn254.G1Affine, RangeBits)
	for i := 0; i < RangeBits; i++ {
		rangeGensG[i] = hashToPoint([]byte(fmt.Sprintf("confidential-transfer:range-G:%d", i)))
		rangeGensH[i] = hashToPoint([]byte(fmt.Sprintf("confidential-transfer:range-H:%d", i)))
	}
}

// hashToPoint derives a curve point from a domain tag.
func hashToPoint(tag []byte) bn254.G1Affine {
	p, err := bn254.HashToG1(tag, []byte("confidential-transfer:v1"))
	if err != nil {
		// HashToG1 only fails on malformed DST; ours is fixed.
		panic(fmt.Sprintf("hash to curve: %v", err))
	}
	return p
}

// RangeGens returns the two vector bases used by range proofs. The returned
// slices are shared; callers must not modify them.
func RangeGens() (gs, hs []bn254.G1Affine) {
	return rangeGensG, rangeGensH
}

// Mul returns s*p.
func Mul(p *bn254.G1Affine, s *fr.Element) bn254.G1Affine {
	var out bn254.G1Affine
	out.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	return out
}

// MulBase returns s*G.
func MulBase(s *fr.Element) bn254.G1Affine {
	return Mul(&G, s)
}

// MulUint64 returns v*p.
func MulUint64(p *bn254.G1Affine, v uint64) bn254.G1Affine {
	var s fr.Element
	s.SetUint64(v)
	return Mul(p, &s)
}

// Sub returns a - b.
func Sub(a, b *bn254.G1Affine) bn254.G1Affine {
	var neg, out bn254.G1Affine
	neg.Neg(b)
	out.Add(a, &neg)
	return out
}

// RandomScalar draws a uniformly random nonzero field element.
func RandomScalar() (fr.Element, error) {
	var s fr.Element
	for {
		if _, err := s.SetRandom(); err != nil {
			return fr.Element{}, fmt.Errorf("scalar sampling failed: %w", err)
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// ScalarFromSeed derives a nonzero field element deterministically from a
// seed. Used for reproducible keypairs and test vectors.
func ScalarFromSeed(seed []byte) fr.Element {
	var s fr.Element
	ctr := byte(0)
	for {
		h, _ := blake2b.New512(nil)
		h.Write([]byte("confidential-transfer:scalar"))
		h.Write(seed)
		h.Write([]byte{ctr})
		s.SetBytes(h.Sum(nil))
		if !s.IsZero() {
			return s
		}
		ctr++
	}
}
