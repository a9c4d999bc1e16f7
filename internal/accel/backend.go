// backend.go - Accelerated implementations of the allow-listed
// operations, built on gnark-crypto's batch fixed-base multiplication
// and multi-scalar multiplication.

package accel

import (
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/proofs"
)

// Choice is the probe outcome consulted on every call.
type Choice uint8

const (
	ChoiceReference Choice = iota
	ChoiceAccelerated
)

func (c Choice) String() string {
	if c == ChoiceAccelerated {
		return "accelerated"
	}
	return "reference"
}

// Probe decides once whether the accelerated backend is worth running
// on this platform. The accelerated paths are parallel multi-scalar
// kernels; on a single hardware thread they only add overhead.
func Probe() Choice {
	if runtime.NumCPU() >= 2 {
		return ChoiceAccelerated
	}
	return ChoiceReference
}

// acceleratedBackend implements the allow-listed operations with
// parallel kernels. It is stateless beyond the task budget.
type acceleratedBackend struct {
	tasks int
}

func newAcceleratedBackend() *acceleratedBackend {
	return &acceleratedBackend{tasks: runtime.NumCPU()}
}

// encryptWith computes the commitment as one two-term multi-scalar
// multiplication instead of two serial scalar multiplications.
func (b *acceleratedBackend) encryptWith(pk elgamal.PublicKey, amount uint64, o *pedersen.Opening) (*elgamal.Ciphertext, error) {
	var x fr.Element
	x.SetUint64(amount)
	r := o.Scalar()

	var c bn254.G1Affine
	if _, err := c.MultiExp(
		[]bn254.G1Affine{curve.G, curve.H},
		[]fr.Element{x, r},
		ecc.MultiExpConfig{NbTasks: b.tasks},
	); err != nil {
		return nil, err
	}
	return &elgamal.Ciphertext{
		Commitment: pedersen.Commitment{Point: c},
		Handle:     elgamal.NewHandle(pk, o),
	}, nil
}

// encryptBatch runs the three fixed-base batches (amounts over G,
// openings over H, openings over the recipient key) in parallel and
// assembles ciphertexts from the results.
func (b *acceleratedBackend) encryptBatch(pk elgamal.PublicKey, amounts []uint64, openings []*pedersen.Opening) ([]*elgamal.Ciphertext, error) {
	n := len(amounts)
	xs := make([]fr.Element, n)
	rs := make([]fr.Element, n)
	for i := range amounts {
		xs[i].SetUint64(amounts[i])
		rs[i] = openings[i].Scalar()
	}

	var xG, rH, rP []bn254.G1Affine
	var g errgroup.Group
	g.Go(func() error {
		xG = bn254.BatchScalarMultiplicationG1(&curve.G, xs)
		return nil
	})
	g.Go(func() error {
		rH = bn254.BatchScalarMultiplicationG1(&curve.H, rs)
		return nil
	})
	g.Go(func() error {
		pkPoint := pk.Point
		rP = bn254.BatchScalarMultiplicationG1(&pkPoint, rs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*elgamal.Ciphertext, n)
	for i := 0; i < n; i++ {
		var c bn254.G1Affine
		c.Add(&xG[i], &rH[i])
		out[i] = &elgamal.Ciphertext{
			Commitment: pedersen.Commitment{Point: c},
			Handle:     elgamal.DecryptHandle{Point: rP[i]},
		}
	}
	return out, nil
}

// rangeProver returns a range prover whose vector commitments run
// through the parallel multi-scalar multiplication.
func (b *acceleratedBackend) rangeProver() *proofs.RangeProver {
	tasks := b.tasks
	return proofs.NewRangeProver(proofs.WithMSM(
		func(points []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
			var acc bn254.G1Affine
			if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{NbTasks: tasks}); err != nil {
				return bn254.G1Affine{}, err
			}
			return acc, nil
		},
	))
}
