// sigma.go - Sigma protocols binding ciphertexts, handles and commitments.
//
// Two protocols are implemented, both made non-interactive through the
// shared Fiat-Shamir transcript:
//
//   - ciphertext validity: the amount ciphertext is well-formed, i.e. its
//     commitment opens to some (x, r) and every decryption handle binds
//     that same r to its public key;
//   - ciphertext-commitment equality: a ciphertext under the prover's key
//     and a standalone Pedersen commitment hide the same amount.
//
// Neither proof reveals the amount or any blinding factor.

package proofs

import (
	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// ValidityProof shows that an amount commitment C = x*G + r*H and handles
// D_j = r*P_j are mutually consistent, without revealing x or r.
type ValidityProof struct {
	A  bn254.G1Affine   // k_x*G + k_r*H
	Bs []bn254.G1Affine // k_r*P_j per receiving key
	Zx fr.Element
	Zr fr.Element
}

// NewValidityProof proves validity of a shared-randomness encryption of
// amount against the given keys. The j-th handle must be r*P_j.
func NewValidityProof(amount uint64, opening *pedersen.Opening, keys []elgamal.PublicKey) (*ValidityProof, error) {
	var x fr.Element
	x.SetUint64(amount)
	r := opening.Scalar()

	kx, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	kr, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}

	a := pedersen.CommitScalar(&kx, &kr).Point
	bs := make([]bn254.G1Affine, len(keys))
	for j, pk := range keys {
		bs[j] = curve.Mul(&pk.Point, &kr)
	}

	c := validityChallenge(pedersen.Commit(amount, opening), keys, handlesFor(keys, opening), &a, bs)

	var zx, zr fr.Element
	zx.Mul(&c, &x).Add(&zx, &kx)
	zr.Mul(&c, &r).Add(&zr, &kr)

	return &ValidityProof{A: a, Bs: bs, Zx: zx, Zr: zr}, nil
}

// Verify checks the proof against the amount commitment, keys and handles.
func (p *ValidityProof) Verify(commitment *pedersen.Commitment, keys []elgamal.PublicKey, handles []elgamal.DecryptHandle) error {
	if len(keys) != len(handles) || len(p.Bs) != len(keys) {
		return ErrInvalidProof
	}

	c := validityChallenge(commitment, keys, handles, &p.A, p.Bs)

	// z_x*G + z_r*H == A + c*C
	lhs := pedersen.CommitScalar(&p.Zx, &p.Zr).Point
	cc := curve.Mul(&commitment.Point, &c)
	var rhs bn254.G1Affine
	rhs.Add(&p.A, &cc)
	if !lhs.Equal(&rhs) {
		return ErrInvalidProof
	}

	// z_r*P_j == B_j + c*D_j for every key
	for j := range keys {
		l := curve.Mul(&keys[j].Point, &p.Zr)
		cd := curve.Mul(&handles[j].Point, &c)
		var r bn254.G1Affine
		r.Add(&p.Bs[j], &cd)
		if !l.Equal(&r) {
			return ErrInvalidProof
		}
	}
	return nil
}

func handlesFor(keys []elgamal.PublicKey, o *pedersen.Opening) []elgamal.DecryptHandle {
	hs := make([]elgamal.DecryptHandle, len(keys))
	for j, pk := range keys {
		hs[j] = elgamal.NewHandle(pk, o)
	}
	return hs
}

func validityChallenge(commitment *pedersen.Commitment, keys []elgamal.PublicKey, handles []elgamal.DecryptHandle, a *bn254.G1Affine, bs []bn254.G1Affine) fr.Element {
	t := curve.NewTranscript("ciphertext-validity")
	t.AppendPoint("commitment", &commitment.Point)
	for j := range keys {
		t.AppendPoint("pubkey", &keys[j].Point)
		t.AppendPoint("handle", &handles[j].Point)
	}
	t.AppendPoint("A", a)
	for j := range bs {
		t.AppendPoint("B", &bs[j])
	}
	return t.ChallengeScalar("c")
}

// EqualityProof shows that a ciphertext (C, D) under public key P and a
// standalone commitment C' hide the same amount. The prover's witnesses
// are the secret key s, the amount, and the opening of C'.
type EqualityProof struct {
	Y0 bn254.G1Affine // k_s*P
	Y1 bn254.G1Affine // k_x*G + k_s*D
	Y2 bn254.G1Affine // k_x*G + k_r*H
	Zs fr.Element
	Zx fr.Element
	Zr fr.Element
}

// NewEqualityProof proves that ct (under kp's key) and the commitment
// built from (amount, opening) hide the same amount. The relations proved
// are H = s*P, C = x*G + s*D, and C' = x*G + r'*H.
func NewEqualityProof(kp *elgamal.Keypair, ct *elgamal.Ciphertext, amount uint64, opening *pedersen.Opening) (*EqualityProof, error) {
	s := kp.Secret.Scalar()
	var x fr.Element
	x.SetUint64(amount)
	rPrime := opening.Scalar()

	ks, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	kx, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	kr, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}

	y0 := curve.Mul(&kp.Public.Point, &ks)
	ksD := curve.Mul(&ct.Handle.Point, &ks)
	kxG := curve.MulBase(&kx)
	var y1 bn254.G1Affine
	y1.Add(&kxG, &ksD)
	y2 := pedersen.CommitScalar(&kx, &kr).Point

	commitment := pedersen.Commit(amount, opening)
	c := equalityChallenge(kp.Public, ct, commitment, &y0, &y1, &y2)

	var zs, zx, zr fr.Element
	zs.Mul(&c, &s).Add(&zs, &ks)
	zx.Mul(&c, &x).Add(&zx, &kx)
	zr.Mul(&c, &rPrime).Add(&zr, &kr)

	return &EqualityProof{Y0: y0, Y1: y1, Y2: y2, Zs: zs, Zx: zx, Zr: zr}, nil
}

// Verify checks the proof against the ciphertext, its public key, and the
// standalone commitment.
func (p *EqualityProof) Verify(pub elgamal.PublicKey, ct *elgamal.Ciphertext, commitment *pedersen.Commitment) error {
	c := equalityChallenge(pub, ct, commitment, &p.Y0, &p.Y1, &p.Y2)

	// z_s*P == Y0 + c*H
	lhs0 := curve.Mul(&pub.Point, &p.Zs)
	cH := curve.Mul(&curve.H, &c)
	var rhs0 bn254.G1Affine
	rhs0.Add(&p.Y0, &cH)
	if !lhs0.Equal(&rhs0) {
		return ErrInvalidProof
	}

	// z_x*G + z_s*D == Y1 + c*C
	zxG := curve.MulBase(&p.Zx)
	zsD := curve.Mul(&ct.Handle.Point, &p.Zs)
	var lhs1 bn254.G1Affine
	lhs1.Add(&zxG, &zsD)
	cC := curve.Mul(&ct.Commitment.Point, &c)
	var rhs1 bn254.G1Affine
	rhs1.Add(&p.Y1, &cC)
	if !lhs1.Equal(&rhs1) {
		return ErrInvalidProof
	}

	// z_x*G + z_r*H == Y2 + c*C'
	lhs2 := pedersen.CommitScalar(&p.Zx, &p.Zr).Point
	cCp := curve.Mul(&commitment.Point, &c)
	var rhs2 bn254.G1Affine
	rhs2.Add(&p.Y2, &cCp)
	if !lhs2.Equal(&rhs2) {
		return ErrInvalidProof
	}
	return nil
}

func equalityChallenge(pub elgamal.PublicKey, ct *elgamal.Ciphertext, commitment *pedersen.Commitment, y0, y1, y2 *bn254.G1Affine) fr.Element {
	t := curve.NewTranscript("ciphertext-commitment-equality")
	t.AppendPoint("pubkey", &pub.Point)
	t.AppendPoint("ct-commitment", &ct.Commitment.Point)
	t.AppendPoint("ct-handle", &ct.Handle.Point)
	t.AppendPoint("commitment", &commitment.Point)
	t.AppendPoint("Y0", y0)
	t.AppendPoint("Y1", y1)
	t.AppendPoint("Y2", y2)
	return t.ChallengeScalar("c")
}
