// engine.go - Encryption engine: encrypt, decrypt, batch encrypt.
//
// Decryption solves a bounded discrete log with baby-step/giant-step. The
// baby-step table is built lazily on first decryption and shared by all
// decryptions on the same engine; engines are safe for concurrent use once
// constructed.

package elgamal

import (
	"errors"
	"sync"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/curve"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
)

// DefaultDecryptBound is the default exclusive upper bound of the
// decryption search: amounts up to 2^32-1 are recoverable.
const DefaultDecryptBound = uint64(1) << 32

// ErrAmountOutOfRange is returned when an amount exceeds the engine's
// configured encryptable range.
var ErrAmountOutOfRange = errors.New("elgamal: amount exceeds representable range")

// Engine encrypts and decrypts amounts. Construct one per isolation
// domain; see the package comment.
type Engine struct {
	decryptBound uint64 // exclusive; amounts in [0, decryptBound) are searchable
	maxAmount    uint64 // inclusive encryptable maximum; 0 means no limit

	tableOnce sync.Once
	babySteps map[[32]byte]uint64
	babyCount uint64
	giantStep bn254.G1Affine // babyCount * G
}

// Option configures an Engine.
type Option func(*Engine)

// WithDecryptBound sets the exclusive upper bound of the decryption
// search. Smaller bounds build smaller tables and fail faster on
// undecryptable ciphertexts.
func WithDecryptBound(bound uint64) Option {
	return func(e *Engine) {
		if bound > 0 {
			e.decryptBound = bound
		}
	}
}

// WithMaxAmount caps the amounts the engine will encrypt. Zero means the
// full uint64 range.
func WithMaxAmount(max uint64) Option {
	return func(e *Engine) { e.maxAmount = max }
}

// New constructs an engine.
func New(opts ...Option) *Engine {
	e := &Engine{decryptBound: DefaultDecryptBound}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encrypt encrypts an amount under a public key with fresh randomness and
// returns the ciphertext together with the Pedersen opening, which proofs
// need to bind against.
func (e *Engine) Encrypt(pk PublicKey, amount uint64) (*Ciphertext, *pedersen.Opening, error) {
	if e.maxAmount != 0 && amount > e.maxAmount {
		return nil, nil, ErrAmountOutOfRange
	}
	o, err := pedersen.NewOpening()
	if err != nil {
		return nil, nil, err
	}
	ct, err := e.EncryptWith(pk, amount, o)
	if err != nil {
		return nil, nil, err
	}
	return ct, o, nil
}

// EncryptWith encrypts with a caller-supplied opening. Proof construction
// uses this to encrypt the same amount against several keys under one
// commitment, and tests use it for determinism.
func (e *Engine) EncryptWith(pk PublicKey, amount uint64, o *pedersen.Opening) (*Ciphertext, error) {
	if e.maxAmount != 0 && amount > e.maxAmount {
		return nil, ErrAmountOutOfRange
	}
	return &Ciphertext{
		Commitment: *pedersen.Commit(amount, o),
		Handle:     NewHandle(pk, o),
	}, nil
}

// EncryptBatch encrypts a slice of amounts under one public key. The
// reference implementation maps Encrypt; the acceleration shim substitutes
// a shared-setup batch when worthwhile.
func (e *Engine) EncryptBatch(pk PublicKey, amounts []uint64) ([]*Ciphertext, []*pedersen.Opening, error) {
	cts := make([]*Ciphertext, len(amounts))
	openings := make([]*pedersen.Opening, len(amounts))
	for i, amount := range amounts {
		ct, o, err := e.Encrypt(pk, amount)
		if err != nil {
			return nil, nil, err
		}
		cts[i], openings[i] = ct, o
	}
	return cts, openings, nil
}

// Decrypt recovers the amount from a ciphertext. The second return is
// false when the amount cannot be recovered: wrong secret key, or a value
// outside the search bound. That outcome is expected when probing, not a
// fault.
func (e *Engine) Decrypt(sk SecretKey, ct *Ciphertext) (uint64, bool) {
	// x*G = C - s*D
	s := sk.Scalar()
	sD := curve.Mul(&ct.Handle.Point, &s)
	target := curve.Sub(&ct.Commitment.Point, &sD)
	return e.solveDiscreteLog(&target)
}

// DecryptBound reports the engine's exclusive search bound.
func (e *Engine) DecryptBound() uint64 {
	return e.decryptBound
}

func (e *Engine) buildTable() {
	m := uint64(1) << 16
	if e.decryptBound < m {
		m = e.decryptBound
	}
	if m == 0 {
		m = 1
	}
	table := make(map[[32]byte]uint64, m)
	var acc bn254.G1Affine // starts at infinity = 0*G
	for i := uint64(0); i < m; i++ {
		table[acc.Bytes()] = i
		acc.Add(&acc, &curve.G)
	}
	e.babySteps = table
	e.babyCount = m
	e.giantStep = curve.MulUint64(&curve.G, m)
}

// solveDiscreteLog finds x in [0, decryptBound) with x*G == target.
func (e *Engine) solveDiscreteLog(target *bn254.G1Affine) (uint64, bool) {
	e.tableOnce.Do(e.buildTable)

	x := *target
	for base := uint64(0); base < e.decryptBound; base += e.babyCount {
		if i, ok := e.babySteps[x.Bytes()]; ok {
			v := base + i
			if v < e.decryptBound {
				return v, true
			}
			return 0, false
		}
		x = curve.Sub(&x, &e.giantStep)
	}
	return 0, false
}
