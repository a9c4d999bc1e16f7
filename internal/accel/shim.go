// Package accel wraps the encryption engine and proof generator behind
// the same method surface, routing allow-listed operations through an
// accelerated backend when the platform supports it. The accelerated
// path is an optimization only: any failure falls back to the reference
// path, and the caller never observes it unless both paths fail.
package accel

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/pedersen"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/proofs"
)

// Op names an operation kind in telemetry and the allow-list.
type Op string

const (
	OpEncrypt       Op = "encrypt"
	OpBatchEncrypt  Op = "batch-encrypt"
	OpDecrypt       Op = "decrypt"
	OpRangeProof    Op = "range-proof"
	OpTransferProof Op = "transfer-proof"
	OpWithdrawProof Op = "withdraw-proof"
)

// Mode selects how the shim chooses between paths.
type Mode uint8

const (
	// ModeAuto consults the platform probe and the allow-list.
	ModeAuto Mode = iota

	// ModeForceReference never uses the accelerated backend.
	ModeForceReference

	// ModeForceAccelerated uses the accelerated backend for every
	// allow-listed operation regardless of the probe.
	ModeForceAccelerated
)

// DefaultPreferredBatchSize sizes the batch threshold: accelerated
// batch kernels are only attempted for batches of at least half this.
const DefaultPreferredBatchSize = 20

// allowListed reports whether an operation may take the accelerated
// path at all. Decryption and composite proof generation always run the
// reference path.
func allowListed(op Op) bool {
	switch op {
	case OpEncrypt, OpBatchEncrypt, OpRangeProof:
		return true
	}
	return false
}

// Shim fronts an Engine and a TransferProver with accelerated variants
// of the allow-listed operations.
type Shim struct {
	engine    *elgamal.Engine
	refProver *proofs.TransferProver
	refRanger *proofs.RangeProver

	backend   *acceleratedBackend
	accRanger *proofs.RangeProver

	mode           Mode
	choice         Choice
	preferredBatch int
	tel            *Telemetry
	log            zerolog.Logger
}

// ShimOption configures a Shim.
type ShimOption func(*Shim)

// WithMode overrides the automatic path selection.
func WithMode(m Mode) ShimOption {
	return func(s *Shim) { s.mode = m }
}

// WithPreferredBatchSize tunes the accelerated batch threshold.
func WithPreferredBatchSize(n int) ShimOption {
	return func(s *Shim) {
		if n > 0 {
			s.preferredBatch = n
		}
	}
}

// WithTelemetryWindow sizes the rolling telemetry window.
func WithTelemetryWindow(n int) ShimOption {
	return func(s *Shim) { s.tel = NewTelemetry(n) }
}

// WithShimLogger attaches a structured logger.
func WithShimLogger(log zerolog.Logger) ShimOption {
	return func(s *Shim) { s.log = log }
}

// NewShim probes the platform once and builds the shim around the given
// engine. Each shim owns its telemetry; independent shims never share
// state.
func NewShim(engine *elgamal.Engine, opts ...ShimOption) *Shim {
	s := &Shim{
		engine:         engine,
		refRanger:      proofs.NewRangeProver(),
		mode:           ModeAuto,
		choice:         Probe(),
		preferredBatch: DefaultPreferredBatchSize,
		tel:            NewTelemetry(DefaultTelemetryWindow),
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.backend = newAcceleratedBackend()
	s.accRanger = s.backend.rangeProver()
	// Composite proofs always run the reference path.
	s.refProver = proofs.NewTransferProver(engine, s.refRanger)
	return s
}

// Choice reports the probe outcome.
func (s *Shim) Choice() Choice {
	return s.choice
}

// Telemetry exposes the rolling call-record window.
func (s *Shim) Telemetry() *Telemetry {
	return s.tel
}

// useAccelerated decides the path for one call.
func (s *Shim) useAccelerated(op Op) bool {
	switch s.mode {
	case ModeForceReference:
		return false
	case ModeForceAccelerated:
		return allowListed(op)
	default:
		return s.choice == ChoiceAccelerated && allowListed(op)
	}
}

func (s *Shim) record(op Op, start time.Time, accelerated bool) {
	s.tel.Add(op, time.Since(start), accelerated)
}

// Encrypt encrypts one amount, accelerated when allowed.
func (s *Shim) Encrypt(pk elgamal.PublicKey, amount uint64) (*elgamal.Ciphertext, *pedersen.Opening, error) {
	opening, err := pedersen.NewOpening()
	if err != nil {
		return nil, nil, err
	}
	ct, err := s.EncryptWith(pk, amount, opening)
	if err != nil {
		return nil, nil, err
	}
	return ct, opening, nil
}

// EncryptWith encrypts with caller-supplied randomness. Both paths are
// deterministic in (amount, pk, opening), so they produce equivalent
// ciphertexts.
func (s *Shim) EncryptWith(pk elgamal.PublicKey, amount uint64, opening *pedersen.Opening) (*elgamal.Ciphertext, error) {
	start := time.Now()
	if s.useAccelerated(OpEncrypt) {
		ct, err := s.backend.encryptWith(pk, amount, opening)
		if err == nil {
			s.record(OpEncrypt, start, true)
			return ct, nil
		}
		s.fallback(OpEncrypt, err)
	}
	ct, err := s.engine.EncryptWith(pk, amount, opening)
	s.record(OpEncrypt, start, false)
	return ct, err
}

// EncryptBatch encrypts many amounts under one key. The accelerated
// batch kernel is only attempted at or above half the preferred batch
// size; smaller batches run item by item.
func (s *Shim) EncryptBatch(pk elgamal.PublicKey, amounts []uint64) ([]*elgamal.Ciphertext, []*pedersen.Opening, error) {
	start := time.Now()
	openings := make([]*pedersen.Opening, len(amounts))
	for i := range openings {
		o, err := pedersen.NewOpening()
		if err != nil {
			return nil, nil, err
		}
		openings[i] = o
	}

	if s.useAccelerated(OpBatchEncrypt) && len(amounts) >= s.preferredBatch/2 {
		cts, err := s.backend.encryptBatch(pk, amounts, openings)
		if err == nil {
			s.record(OpBatchEncrypt, start, true)
			return cts, openings, nil
		}
		s.fallback(OpBatchEncrypt, err)
	}

	cts := make([]*elgamal.Ciphertext, len(amounts))
	for i, amount := range amounts {
		ct, err := s.engine.EncryptWith(pk, amount, openings[i])
		if err != nil {
			return nil, nil, err
		}
		cts[i] = ct
	}
	s.record(OpBatchEncrypt, start, false)
	return cts, openings, nil
}

// Decrypt always runs the reference path.
func (s *Shim) Decrypt(sk elgamal.SecretKey, ct *elgamal.Ciphertext) (uint64, bool) {
	start := time.Now()
	amount, ok := s.engine.Decrypt(sk, ct)
	s.record(OpDecrypt, start, false)
	return amount, ok
}

// GenerateRangeProof proves with the accelerated vector-commitment
// kernel when allowed.
func (s *Shim) GenerateRangeProof(amount uint64, commitment *pedersen.Commitment, opening *pedersen.Opening) (*proofs.RangeProof, error) {
	start := time.Now()
	if s.useAccelerated(OpRangeProof) {
		proof, err := s.accRanger.Prove(amount, commitment, opening)
		if err == nil {
			s.record(OpRangeProof, start, true)
			return proof, nil
		}
		s.fallback(OpRangeProof, err)
	}
	proof, err := s.refRanger.Prove(amount, commitment, opening)
	s.record(OpRangeProof, start, false)
	return proof, err
}

// GenerateTransferProof always runs the reference path.
func (s *Shim) GenerateTransferProof(sourceBalance *elgamal.Ciphertext, amount uint64, sender *elgamal.Keypair, destPub elgamal.PublicKey) (*proofs.TransferBundle, error) {
	start := time.Now()
	bundle, err := s.refProver.GenerateTransferProof(sourceBalance, amount, sender, destPub)
	s.record(OpTransferProof, start, false)
	return bundle, err
}

// GenerateWithdrawProof always runs the reference path.
func (s *Shim) GenerateWithdrawProof(sourceBalance *elgamal.Ciphertext, amount uint64, owner *elgamal.Keypair) (*proofs.WithdrawBundle, error) {
	start := time.Now()
	bundle, err := s.refProver.GenerateWithdrawProof(sourceBalance, amount, owner)
	s.record(OpWithdrawProof, start, false)
	return bundle, err
}

// fallback logs a recovered accelerated-path failure. It is never
// surfaced to the caller.
func (s *Shim) fallback(op Op, err error) {
	s.log.Warn().
		Str("op", string(op)).
		Err(err).
		Msg("accelerated path failed, retrying on reference path")
}
