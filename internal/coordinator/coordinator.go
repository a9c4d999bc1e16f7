// Package coordinator sequences confidential transfers end to end:
// proof generation, ephemeral proof-context funding, proof submission,
// execution of the operation that consumes the verified context, and
// context cleanup. Submission, account access and context funding are
// collaborator interfaces; the coordinator never talks to a network
// itself.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/proofs"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// DefaultComputeCeiling is the resource budget one submitted operation
// set must stay under, in abstract compute units.
const DefaultComputeCeiling uint64 = 1_400_000

// DefaultProofCost is the assumed verification cost of a single
// transfer proof, in the same units as the ceiling.
const DefaultProofCost uint64 = 350_000

var (
	// ErrResourceBudgetExceeded is returned when even a single proof
	// does not fit under the configured compute ceiling.
	ErrResourceBudgetExceeded = errors.New("coordinator: compute ceiling below single proof cost")

	// ErrIllegalTransition is returned on a lifecycle edge the state
	// machine does not allow.
	ErrIllegalTransition = errors.New("coordinator: illegal context state transition")

	// ErrAccountNotFound is the sentinel an AccountSource returns for a
	// missing account.
	ErrAccountNotFound = errors.New("coordinator: account not found")
)

// SubmissionHandle correlates a submitted operation set with whatever
// confirmation machinery the sink runs.
type SubmissionHandle string

// SubmissionSink accepts ordered operation sets for external execution.
// Confirmation and retry are the sink's responsibility.
type SubmissionSink interface {
	Submit(ctx context.Context, instructions []token.Instruction, signers []token.Address) (SubmissionHandle, error)
}

// AccountSource fetches raw account data. A missing account is reported
// as ErrAccountNotFound.
type AccountSource interface {
	AccountData(ctx context.Context, addr token.Address) ([]byte, error)
}

// ContextFunder builds the operation that creates and funds an
// ephemeral proof context account of the given size.
type ContextFunder interface {
	FundContext(addr token.Address, space uint64) token.Instruction
}

// Coordinator drives confidential transfer and withdraw flows. The
// evolving source balance across a batch is per-sender mutable state;
// batch processing is serialized internally.
type Coordinator struct {
	engine   *elgamal.Engine
	prover   *proofs.TransferProver
	sink     SubmissionSink
	funder   ContextFunder
	accounts AccountSource
	log      zerolog.Logger

	tokenProgram token.Address
	proofProgram token.Address
	decimals     byte

	ceiling   uint64
	proofCost uint64

	nonce   atomic.Uint64
	batchMu sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithComputeCeiling overrides the per-submission compute budget.
func WithComputeCeiling(ceiling uint64) Option {
	return func(c *Coordinator) { c.ceiling = ceiling }
}

// WithProofCost overrides the assumed per-proof verification cost.
func WithProofCost(cost uint64) Option {
	return func(c *Coordinator) { c.proofCost = cost }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithDecimals sets the token decimals used in withdraw and deposit
// payloads.
func WithDecimals(d byte) Option {
	return func(c *Coordinator) { c.decimals = d }
}

// New builds a Coordinator. The engine is shared with the prover so
// sufficiency checks and callers see the same decryption bound.
func New(engine *elgamal.Engine, prover *proofs.TransferProver, sink SubmissionSink, funder ContextFunder, accounts AccountSource, tokenProgram, proofProgram token.Address, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine:       engine,
		prover:       prover,
		sink:         sink,
		funder:       funder,
		accounts:     accounts,
		log:          zerolog.Nop(),
		tokenProgram: tokenProgram,
		proofProgram: proofProgram,
		ceiling:      DefaultComputeCeiling,
		proofCost:    DefaultProofCost,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchConfidentialAccount loads and parses the confidential transfer
// extension of an account.
func (c *Coordinator) FetchConfidentialAccount(ctx context.Context, addr token.Address) (*token.ConfidentialAccount, error) {
	data, err := c.accounts.AccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	acc, err := token.ParseConfidentialAccount(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return acc, nil
}

// BuildConfigureAccount builds the account-configuration operation.
func (c *Coordinator) BuildConfigureAccount(account, owner token.Address, pubkey elgamal.PublicKey, maxPendingCreditCounter uint64) token.Instruction {
	return token.Instruction{
		Program: c.tokenProgram,
		Accounts: []token.AccountMeta{
			{Address: account, Writable: true},
			{Address: owner, Signer: true},
		},
		Data: token.EncodeConfigureAccount(pubkey, maxPendingCreditCounter),
	}
}

// BuildDeposit builds the public-to-pending deposit operation.
func (c *Coordinator) BuildDeposit(account, owner token.Address, amount uint64) token.Instruction {
	return token.Instruction{
		Program: c.tokenProgram,
		Accounts: []token.AccountMeta{
			{Address: account, Writable: true},
			{Address: owner, Signer: true},
		},
		Data: token.EncodeDeposit(amount, c.decimals),
	}
}

// BuildApplyPendingBalance builds the pending-to-available rollover
// operation.
func (c *Coordinator) BuildApplyPendingBalance(account, owner token.Address, expectedPendingCreditCounter uint64) token.Instruction {
	return token.Instruction{
		Program: c.tokenProgram,
		Accounts: []token.AccountMeta{
			{Address: account, Writable: true},
			{Address: owner, Signer: true},
		},
		Data: token.EncodeApplyPendingBalance(expectedPendingCreditCounter),
	}
}
