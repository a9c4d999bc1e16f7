// rangeproof.go - Bulletproof-style range proof over a Pedersen commitment.
//
// The proof shows that the committed amount lies in [0, 2^64) without
// revealing it. The polynomial vectors l and r are carried in the clear
// rather than folded through the recursive inner-product argument, which
// keeps verification to three group equations over the fixed generator
// vectors.

package proofs

import (
	"fmt"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// MSMFunc computes a multi-scalar multiplication sum(scalars[i]*points[i]).
// The slices are always the same length.
type MSMFunc func(points []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error)

// RangeProof attests that a committed amount lies in [0, 2^RangeBits).
type RangeProof struct {
	A    bn254.G1Affine
	S    bn254.G1Affine
	T1   bn254.G1Affine
	T2   bn254.G1Affine
	TauX fr.Element
	Mu   fr.Element
	THat fr.Element
	L    []fr.Element
	R    []fr.Element
}

// RangeProver generates range proofs. The zero value is not usable;
// construct with NewRangeProver.
type RangeProver struct {
	msm MSMFunc
}

// RangeProverOption configures a RangeProver.
type RangeProverOption func(*RangeProver)

// WithMSM substitutes the multi-scalar multiplication used for the vector
// commitments A and S.
func WithMSM(f MSMFunc) RangeProverOption {
	return func(p *RangeProver) { p.msm = f }
}

// NewRangeProver returns a prover using a serial multi-scalar
// multiplication unless overridden.
func NewRangeProver(opts ...RangeProverOption) *RangeProver {
	p := &RangeProver{msm: naiveMSM}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateRangeProof proves with the default serial prover.
func GenerateRangeProof(amount uint64, commitment *pedersen.Commitment, opening *pedersen.Opening) (*RangeProof, error) {
	return NewRangeProver().Prove(amount, commitment, opening)
}

// Prove generates a range proof for amount, which must open commitment
// under opening.
func (p *RangeProver) Prove(amount uint64, commitment *pedersen.Commitment, opening *pedersen.Opening) (*RangeProof, error) {
	n := curve.RangeBits
	gs, hs := curve.RangeGens()
	gamma := opening.Scalar()

	// Bit decomposition: aL holds the bits, aR = aL - 1 per entry.
	aL := make([]fr.Element, n)
	aR := make([]fr.Element, n)
	var one fr.Element
	one.SetOne()
	for i := 0; i < n; i++ {
		aL[i].SetUint64((amount >> uint(i)) & 1)
		aR[i].Sub(&aL[i], &one)
	}

	alpha, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	rho, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	sL, err := randomVector(n)
	if err != nil {
		return nil, err
	}
	sR, err := randomVector(n)
	if err != nil {
		return nil, err
	}

	a, err := p.vectorCommit(&alpha, aL, aR, gs, hs)
	if err != nil {
		return nil, fmt.Errorf("range proof: commit A: %w", err)
	}
	s, err := p.vectorCommit(&rho, sL, sR, gs, hs)
	if err != nil {
		return nil, fmt.Errorf("range proof: commit S: %w", err)
	}

	t := curve.NewTranscript("range-proof")
	t.AppendPoint("V", &commitment.Point)
	t.AppendPoint("A", &a)
	t.AppendPoint("S", &s)
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")

	yn := powers(&y, n)
	twos := powersOfTwo(n)
	var zz fr.Element
	zz.Mul(&z, &z)

	// l(X) = (aL - z*1) + sL*X
	// r(X) = y^n o (aR + z*1 + sR*X) + z^2 * 2^n
	l0 := make([]fr.Element, n)
	r0 := make([]fr.Element, n)
	r1 := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		l0[i].Sub(&aL[i], &z)

		var tmp fr.Element
		tmp.Add(&aR[i], &z)
		r0[i].Mul(&yn[i], &tmp)
		tmp.Mul(&zz, &twos[i])
		r0[i].Add(&r0[i], &tmp)

		r1[i].Mul(&yn[i], &sR[i])
	}

	t1 := innerProduct(l0, r1)
	tmp := innerProduct(sL, r0)
	t1.Add(&t1, &tmp)
	t2 := innerProduct(sL, r1)

	tau1, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	tau2, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	tc1 := pedersen.CommitScalar(&t1, &tau1).Point
	tc2 := pedersen.CommitScalar(&t2, &tau2).Point

	t.AppendPoint("T1", &tc1)
	t.AppendPoint("T2", &tc2)
	x := t.ChallengeScalar("x")

	var xx fr.Element
	xx.Mul(&x, &x)

	var tauX fr.Element
	tauX.Mul(&tau1, &x)
	var t2x fr.Element
	t2x.Mul(&tau2, &xx)
	tauX.Add(&tauX, &t2x)
	var zzg fr.Element
	zzg.Mul(&zz, &gamma)
	tauX.Add(&tauX, &zzg)

	var mu fr.Element
	mu.Mul(&rho, &x)
	mu.Add(&mu, &alpha)

	lVec := make([]fr.Element, n)
	rVec := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		var li, ri fr.Element
		li.Mul(&sL[i], &x)
		lVec[i].Add(&l0[i], &li)
		ri.Mul(&r1[i], &x)
		rVec[i].Add(&r0[i], &ri)
	}
	tHat := innerProduct(lVec, rVec)

	return &RangeProof{
		A: a, S: s, T1: tc1, T2: tc2,
		TauX: tauX, Mu: mu, THat: tHat,
		L: lVec, R: rVec,
	}, nil
}

// Verify checks the proof against the amount commitment.
func (p *RangeProof) Verify(commitment *pedersen.Commitment) error {
	n := curve.RangeBits
	if len(p.L) != n || len(p.R) != n {
		return ErrInvalidProof
	}
	gs, hs := curve.RangeGens()

	t := curve.NewTranscript("range-proof")
	t.AppendPoint("V", &commitment.Point)
	t.AppendPoint("A", &p.A)
	t.AppendPoint("S", &p.S)
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")
	t.AppendPoint("T1", &p.T1)
	t.AppendPoint("T2", &p.T2)
	x := t.ChallengeScalar("x")

	yn := powers(&y, n)
	twos := powersOfTwo(n)
	var zz, zzz fr.Element
	zz.Mul(&z, &z)
	zzz.Mul(&zz, &z)
	var xx fr.Element
	xx.Mul(&x, &x)

	// t_hat must equal <L, R>.
	ip := innerProduct(p.L, p.R)
	if !ip.Equal(&p.THat) {
		return ErrInvalidProof
	}

	// delta(y, z) = (z - z^2)*<1, y^n> - z^3*<1, 2^n>
	var sumY, sumTwo fr.Element
	for i := 0; i < n; i++ {
		sumY.Add(&sumY, &yn[i])
		sumTwo.Add(&sumTwo, &twos[i])
	}
	var delta, zSubZZ, z3t fr.Element
	zSubZZ.Sub(&z, &zz)
	delta.Mul(&zSubZZ, &sumY)
	z3t.Mul(&zzz, &sumTwo)
	delta.Sub(&delta, &z3t)

	// g^t_hat * h^tau_x == V^{z^2} * T1^x * T2^{x^2} * g^delta
	lhs := pedersen.CommitScalar(&p.THat, &p.TauX).Point
	rhs := curve.Mul(&commitment.Point, &zz)
	term := curve.Mul(&p.T1, &x)
	rhs.Add(&rhs, &term)
	term = curve.Mul(&p.T2, &xx)
	rhs.Add(&rhs, &term)
	term = curve.MulBase(&delta)
	rhs.Add(&rhs, &term)
	if !lhs.Equal(&rhs) {
		return ErrInvalidProof
	}

	// A + x*S + sum (z*y^i + z^2*2^i) h'_i
	//   == mu*H + sum (L_i + z) g_i + sum R_i h'_i
	// with h'_i = y^{-i} * h_i.
	var yInv fr.Element
	yInv.Inverse(&y)
	yInvPow := powers(&yInv, n)

	lhs2 := p.A
	term = curve.Mul(&p.S, &x)
	lhs2.Add(&lhs2, &term)
	for i := 0; i < n; i++ {
		var sc, t2 fr.Element
		sc.Mul(&z, &yn[i])
		t2.Mul(&zz, &twos[i])
		sc.Add(&sc, &t2)
		sc.Mul(&sc, &yInvPow[i])
		term = curve.Mul(&hs[i], &sc)
		lhs2.Add(&lhs2, &term)
	}

	rhs2 := curve.Mul(&curve.H, &p.Mu)
	for i := 0; i < n; i++ {
		var sc fr.Element
		sc.Add(&p.L[i], &z)
		term = curve.Mul(&gs[i], &sc)
		rhs2.Add(&rhs2, &term)

		sc.Mul(&p.R[i], &yInvPow[i])
		term = curve.Mul(&hs[i], &sc)
		rhs2.Add(&rhs2, &term)
	}

	if !lhs2.Equal(&rhs2) {
		return ErrInvalidProof
	}
	return nil
}

// vectorCommit computes blind*H + sum(left[i]*gs[i]) + sum(right[i]*hs[i]).
func (p *RangeProver) vectorCommit(blind *fr.Element, left, right []fr.Element, gs, hs []bn254.G1Affine) (bn254.G1Affine, error) {
	n := len(left)
	points := make([]bn254.G1Affine, 0, 2*n+1)
	scalars := make([]fr.Element, 0, 2*n+1)
	points = append(points, curve.H)
	scalars = append(scalars, *blind)
	points = append(points, gs...)
	scalars = append(scalars, left...)
	points = append(points, hs...)
	scalars = append(scalars, right...)
	return p.msm(points, scalars)
}

func naiveMSM(points []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	var acc bn254.G1Affine
	for i := range points {
		term := curve.Mul(&points[i], &scalars[i])
		acc.Add(&acc, &term)
	}
	return acc, nil
}

func randomVector(n int) ([]fr.Element, error) {
	v := make([]fr.Element, n)
	for i := range v {
		s, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		v[i] = s
	}
	return v, nil
}

func innerProduct(a, b []fr.Element) fr.Element {
	var acc, term fr.Element
	for i := range a {
		term.Mul(&a[i], &b[i])
		acc.Add(&acc, &term)
	}
	return acc
}

func powers(x *fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], x)
	}
	return out
}

func powersOfTwo(n int) []fr.Element {
	var two fr.Element
	two.SetUint64(2)
	return powers(&two, n)
}
