// transfer.go - Single transfer and withdraw flows.

package coordinator

import (
	"context"
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// TransferRequest describes one confidential transfer.
type TransferRequest struct {
	Sender        *elgamal.Keypair
	SenderAddress token.Address
	SourceAccount token.Address
	SourceBalance *elgamal.Ciphertext

	DestAccount token.Address
	DestPubkey  elgamal.PublicKey
	Amount      uint64

	// AutoCleanup closes the proof context after consumption,
	// reclaiming rent to RentRecipient. Without it the context is left
	// Abandoned for out-of-band cleanup.
	AutoCleanup   bool
	RentRecipient token.Address
}

// TransferResult reports a completed transfer.
type TransferResult struct {
	// NewSourceBalance is the sender's balance after the transfer.
	NewSourceBalance *elgamal.Ciphertext

	// DestCiphertext is the amount under the destination key, credited
	// to the destination's pending balance.
	DestCiphertext *elgamal.Ciphertext

	Context *ProofContext
	Handles []SubmissionHandle
}

// Transfer runs one confidential transfer through the full context
// lifecycle. On success the context is Closed (with AutoCleanup) or
// Abandoned; the caller owns abandoned contexts. On error the result
// is still returned so the caller can reach a context that was funded
// before the failure.
func (c *Coordinator) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	pc := c.newProofContext(req.Sender.Public)

	bundle, err := c.prover.GenerateTransferProof(req.SourceBalance, req.Amount, req.Sender, req.DestPubkey)
	if err != nil {
		return nil, fmt.Errorf("transfer proof: %w", err)
	}
	if err := pc.Transition(StateProofGenerated); err != nil {
		return nil, err
	}

	consume := token.Instruction{
		Program: c.tokenProgram,
		Accounts: []token.AccountMeta{
			{Address: req.SourceAccount, Writable: true},
			{Address: req.DestAccount, Writable: true},
			{Address: pc.Address},
			{Address: req.SenderAddress, Signer: true},
		},
		Data: token.EncodeTransfer(bundle.NewSourceBalance, pc.Address),
	}
	verify := token.EncodeVerifyTransfer(bundle.Proof.Bytes())

	handles, err := c.runContext(ctx, pc, req.SenderAddress, verify, consume, req.AutoCleanup, req.RentRecipient)
	if err != nil {
		// The context may already hold rent on-chain; hand it back so
		// the caller can close it.
		return &TransferResult{Context: pc, Handles: handles}, err
	}

	c.log.Debug().
		Stringer("context", pc.Address).
		Uint64("amount", req.Amount).
		Str("state", pc.State().String()).
		Msg("transfer complete")

	return &TransferResult{
		NewSourceBalance: bundle.NewSourceBalance,
		DestCiphertext:   bundle.DestCiphertext,
		Context:          pc,
		Handles:          handles,
	}, nil
}

// WithdrawRequest describes one withdrawal to public balance.
type WithdrawRequest struct {
	Owner         *elgamal.Keypair
	OwnerAddress  token.Address
	SourceAccount token.Address
	SourceBalance *elgamal.Ciphertext
	Amount        uint64

	AutoCleanup   bool
	RentRecipient token.Address
}

// WithdrawResult reports a completed withdrawal.
type WithdrawResult struct {
	NewSourceBalance *elgamal.Ciphertext
	Context          *ProofContext
	Handles          []SubmissionHandle
}

// Withdraw runs one withdrawal through the full context lifecycle.
func (c *Coordinator) Withdraw(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
	pc := c.newProofContext(req.Owner.Public)

	bundle, err := c.prover.GenerateWithdrawProof(req.SourceBalance, req.Amount, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("withdraw proof: %w", err)
	}
	if err := pc.Transition(StateProofGenerated); err != nil {
		return nil, err
	}

	consume := token.Instruction{
		Program: c.tokenProgram,
		Accounts: []token.AccountMeta{
			{Address: req.SourceAccount, Writable: true},
			{Address: pc.Address},
			{Address: req.OwnerAddress, Signer: true},
		},
		Data: token.EncodeWithdraw(req.Amount, c.decimals, pc.Address),
	}
	verify := token.EncodeVerifyWithdraw(bundle.Proof.Bytes())

	handles, err := c.runContext(ctx, pc, req.OwnerAddress, verify, consume, req.AutoCleanup, req.RentRecipient)
	if err != nil {
		return &WithdrawResult{Context: pc, Handles: handles}, err
	}

	c.log.Debug().
		Stringer("context", pc.Address).
		Uint64("amount", req.Amount).
		Str("state", pc.State().String()).
		Msg("withdraw complete")

	return &WithdrawResult{
		NewSourceBalance: bundle.NewSourceBalance,
		Context:          pc,
		Handles:          handles,
	}, nil
}

// runContext drives a context with an already generated proof through
// init+verify, consume, and optional cleanup. Context init and proof
// submission go out as one operation set.
func (c *Coordinator) runContext(ctx context.Context, pc *ProofContext, authority token.Address, verifyPayload []byte, consume token.Instruction, autoCleanup bool, rentRecipient token.Address) ([]SubmissionHandle, error) {
	fund := c.funder.FundContext(pc.Address, uint64(len(verifyPayload)))
	verify := token.Instruction{
		Program: c.proofProgram,
		Accounts: []token.AccountMeta{
			{Address: pc.Address, Writable: true},
			{Address: authority, Signer: true},
		},
		Data: verifyPayload,
	}

	var handles []SubmissionHandle
	h, err := c.sink.Submit(ctx, []token.Instruction{fund, verify}, []token.Address{authority})
	if err != nil {
		return nil, fmt.Errorf("submit context init: %w", err)
	}
	handles = append(handles, h)
	if err := pc.Transition(StateContextInitialized); err != nil {
		return nil, err
	}
	if err := pc.Transition(StateProofSubmitted); err != nil {
		return nil, err
	}

	h, err = c.sink.Submit(ctx, []token.Instruction{consume}, []token.Address{authority})
	if err != nil {
		// The context account is already funded on-chain; abandon it so
		// cleanup can reclaim its rent.
		if terr := pc.Transition(StateAbandoned); terr != nil {
			return handles, terr
		}
		c.log.Warn().
			Stringer("context", pc.Address).
			Err(err).
			Msg("consume failed, funded context abandoned")
		return handles, fmt.Errorf("submit consume: %w", err)
	}
	handles = append(handles, h)
	if err := pc.Transition(StateConsumed); err != nil {
		return handles, err
	}

	if !autoCleanup {
		if err := pc.Transition(StateAbandoned); err != nil {
			return handles, err
		}
		c.log.Warn().
			Stringer("context", pc.Address).
			Msg("proof context left open, rent unreclaimed until closed")
		return handles, nil
	}

	closeOp := c.buildCloseContext(pc, authority, rentRecipient)
	h, err = c.sink.Submit(ctx, []token.Instruction{closeOp}, []token.Address{authority})
	if err != nil {
		// The consume succeeded; the context is merely leaked.
		if terr := pc.Transition(StateAbandoned); terr != nil {
			return handles, terr
		}
		c.log.Warn().
			Stringer("context", pc.Address).
			Err(err).
			Msg("context close failed, context abandoned")
		return handles, nil
	}
	handles = append(handles, h)
	if err := pc.Transition(StateClosed); err != nil {
		return handles, err
	}
	return handles, nil
}
