package curve

import (
	"encoding/binary"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"
)

// Transcript is a Fiat-Shamir transcript. Every proof in this module binds
// its challenges to a domain-separated running hash of all prior messages,
// so a proof transcript cannot be replayed across contexts.
type Transcript struct {
	state [32]byte
}

// NewTranscript starts a transcript under a protocol domain label.
func NewTranscript(domain string) *Transcript {
	t := &Transcript{}
	t.state = blake2b.Sum256(append([]byte("confidential-transfer:transcript:"), domain...))
	return t
}

// Append absorbs a labeled message. Each message is length-prefixed so
// adjacent messages cannot be confused.
func (t *Transcript) Append(label string, msgs ...[]byte) {
	h, _ := blake2b.New256(nil)
	h.Write(t.state[:])
	h.Write([]byte(label))
	var lenBuf [4]byte
	for _, m := range msgs {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(m)))
		h.Write(lenBuf[:])
		h.Write(m)
	}
	copy(t.state[:], h.Sum(nil))
}

// AppendPoint absorbs a compressed curve point.
func (t *Transcript) AppendPoint(label string, p *bn254.G1Affine) {
	b := p.Bytes()
	t.Append(label, b[:])
}

// AppendUint64 absorbs a little-endian integer.
func (t *Transcript) AppendUint64(label string, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	t.Append(label, b[:])
}

// ChallengeScalar derives the next challenge and folds it back into the
// transcript state. The all-zero challenge is mapped to one so challenges
// are always invertible.
func (t *Transcript) ChallengeScalar(label string) fr.Element {
	t.Append("challenge", []byte(label))
	var e fr.Element
	e.SetBytes(t.state[:])
	if e.IsZero() {
		e.SetOne()
	}
	return e
}
