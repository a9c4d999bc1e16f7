// pedersen.go - Pedersen commitments over BN254 G1.
//
// A commitment C = v*G + r*H hides the amount v behind the blinding factor
// r and is binding under the discrete log assumption. Commitments are the
// public anchor every proof in this module is checked against, and they
// combine homomorphically: Commit(a, r1) + Commit(b, r2) = Commit(a+b, r1+r2).

package pedersen

import (
	"errors"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
)

// Size is the wire size of a compressed commitment.
const Size = 32

var (
	// ErrInvalidCommitment is returned when commitment bytes do not decode
	// to a curve point.
	ErrInvalidCommitment = errors.New("pedersen: invalid commitment encoding")
	// ErrInvalidOpening is returned when opening bytes are malformed.
	ErrInvalidOpening = errors.New("pedersen: invalid opening encoding")
)

// Opening is the blinding factor r of a commitment. Whoever knows the
// opening (and the amount) can prove statements about the commitment.
type Opening struct {
	r fr.Element
}

// NewOpening draws a fresh random opening.
func NewOpening() (*Opening, error) {
	r, err := curve.RandomScalar()
	if err != nil {
		return nil, err
	}
	return &Opening{r: r}, nil
}

// OpeningFromScalar wraps an existing scalar as an opening.
func OpeningFromScalar(r fr.Element) *Opening {
	return &Opening{r: r}
}

// OpeningFromBytes decodes a 32-byte big-endian opening.
func OpeningFromBytes(data []byte) (*Opening, error) {
	if len(data) != Size {
		return nil, ErrInvalidOpening
	}
	var r fr.Element
	r.SetBytes(data)
	return &Opening{r: r}, nil
}

// Scalar returns the blinding factor.
func (o *Opening) Scalar() fr.Element {
	return o.r
}

// Bytes returns the 32-byte big-endian encoding.
func (o *Opening) Bytes() []byte {
	b := o.r.Bytes()
	return b[:]
}

// Add returns an opening for the sum of two commitments.
func (o *Opening) Add(other *Opening) *Opening {
	var r fr.Element
	r.Add(&o.r, &other.r)
	return &Opening{r: r}
}

// Sub returns an opening for the difference of two commitments.
func (o *Opening) Sub(other *Opening) *Opening {
	var r fr.Element
	r.Sub(&o.r, &other.r)
	return &Opening{r: r}
}

// Commitment is a point C = v*G + r*H.
type Commitment struct {
	Point bn254.G1Affine
}

// Commit commits to an amount under an opening.
func Commit(amount uint64, o *Opening) *Commitment {
	vG := curve.MulUint64(&curve.G, amount)
	rH := curve.Mul(&curve.H, &o.r)
	var c bn254.G1Affine
	c.Add(&vG, &rH)
	return &Commitment{Point: c}
}

// CommitScalar commits to an arbitrary field element. Used internally by
// proofs; amounts exposed to callers are always uint64.
func CommitScalar(v, r *fr.Element) *Commitment {
	vG := curve.MulBase(v)
	rH := curve.Mul(&curve.H, r)
	var c bn254.G1Affine
	c.Add(&vG, &rH)
	return &Commitment{Point: c}
}

// Verify reports whether the commitment opens to (amount, o).
func (c *Commitment) Verify(amount uint64, o *Opening) bool {
	expected := Commit(amount, o)
	return c.Point.Equal(&expected.Point)
}

// Add returns c + other.
func (c *Commitment) Add(other *Commitment) *Commitment {
	var out bn254.G1Affine
	out.Add(&c.Point, &other.Point)
	return &Commitment{Point: out}
}

// Sub returns c - other.
func (c *Commitment) Sub(other *Commitment) *Commitment {
	var neg, out bn254.G1Affine
	neg.Neg(&other.Point)
	out.Add(&c.Point, &neg)
	return &Commitment{Point: out}
}

// Equal reports whether two commitments are the same point.
func (c *Commitment) Equal(other *Commitment) bool {
	return c.Point.Equal(&other.Point)
}

// Bytes returns the 32-byte compressed encoding.
func (c *Commitment) Bytes() [Size]byte {
	return c.Point.Bytes()
}

// FromBytes decodes a compressed commitment.
func FromBytes(data []byte) (*Commitment, error) {
	if len(data) != Size {
		return nil, ErrInvalidCommitment
	}
	var p bn254.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, ErrInvalidCommitment
	}
	return &Commitment{Point: p}, nil
}
