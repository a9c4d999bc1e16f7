// serialize.go - Wire encoding of proof bundles.
//
// Points are 32-byte compressed, scalars 32-byte big-endian. Layouts are
// fixed-width so external verifiers can parse by offset.

package proofs

import (
	"encoding/binary"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
)

// Encoded sizes in bytes.
const (
	ValidityProofSize = 5 * 32            // A, two B's, Zx, Zr
	EqualityProofSize = 6 * 32            // Y0..Y2, Zs, Zx, Zr
	RangeProofSize    = (7 + 2*curve.RangeBits) * 32 // A,S,T1,T2, TauX,Mu,THat, L,R
	TransferProofSize = 3*32 + 2*32 + EqualityProofSize + ValidityProofSize + RangeProofSize
	WithdrawProofSize = 8 + 2*32 + EqualityProofSize + RangeProofSize
)

func appendPoint(dst []byte, p *bn254.G1Affine) []byte {
	b := p.Bytes()
	return append(dst, b[:]...)
}

func appendScalar(dst []byte, s *fr.Element) []byte {
	b := s.Bytes()
	return append(dst, b[:]...)
}

func (p *ValidityProof) appendTo(dst []byte) []byte {
	dst = appendPoint(dst, &p.A)
	for i := range p.Bs {
		dst = appendPoint(dst, &p.Bs[i])
	}
	dst = appendScalar(dst, &p.Zx)
	return appendScalar(dst, &p.Zr)
}

func (p *EqualityProof) appendTo(dst []byte) []byte {
	dst = appendPoint(dst, &p.Y0)
	dst = appendPoint(dst, &p.Y1)
	dst = appendPoint(dst, &p.Y2)
	dst = appendScalar(dst, &p.Zs)
	dst = appendScalar(dst, &p.Zx)
	return appendScalar(dst, &p.Zr)
}

func (p *RangeProof) appendTo(dst []byte) []byte {
	dst = appendPoint(dst, &p.A)
	dst = appendPoint(dst, &p.S)
	dst = appendPoint(dst, &p.T1)
	dst = appendPoint(dst, &p.T2)
	dst = appendScalar(dst, &p.TauX)
	dst = appendScalar(dst, &p.Mu)
	dst = appendScalar(dst, &p.THat)
	for i := range p.L {
		dst = appendScalar(dst, &p.L[i])
	}
	for i := range p.R {
		dst = appendScalar(dst, &p.R[i])
	}
	return dst
}

// Bytes returns the fixed-width wire encoding of a transfer proof.
func (p *TransferProof) Bytes() []byte {
	out := make([]byte, 0, TransferProofSize)
	out = appendPoint(out, &p.EncryptedAmount.Commitment.Point)
	out = appendPoint(out, &p.EncryptedAmount.SenderHandle.Point)
	out = appendPoint(out, &p.EncryptedAmount.DestHandle.Point)
	out = appendPoint(out, &p.NewSourceCommitment.Point)
	out = appendPoint(out, &p.RangeCommitment.Point)
	out = p.Equality.appendTo(out)
	out = p.Validity.appendTo(out)
	return p.Range.appendTo(out)
}

// Bytes returns the fixed-width wire encoding of a withdraw proof.
func (p *WithdrawProof) Bytes() []byte {
	out := make([]byte, 0, WithdrawProofSize)
	out = binary.LittleEndian.AppendUint64(out, p.Amount)
	out = appendPoint(out, &p.NewSourceCommitment.Point)
	out = appendPoint(out, &p.RangeCommitment.Point)
	out = p.Equality.appendTo(out)
	return p.Range.appendTo(out)
}
