// batch.go - Greedy batch packing under the compute ceiling.
//
// Recipients are packed into consecutive sub-batches while the running
// cost estimate (proof cost x count) stays under the ceiling. The
// sender's balance threads sequentially: sub-batch i+1 proves against
// the balance left by sub-batch i, so sub-batches are never generated
// in parallel for one sender.

package coordinator

import (
	"context"
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/elgamal"
	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// Recipient is one destination in a batch transfer.
type Recipient struct {
	Account token.Address
	Pubkey  elgamal.PublicKey
	Amount  uint64
}

// BatchRequest describes a multi-recipient transfer.
type BatchRequest struct {
	Sender        *elgamal.Keypair
	SenderAddress token.Address
	SourceAccount token.Address
	SourceBalance *elgamal.Ciphertext

	Recipients []Recipient

	AutoCleanup   bool
	RentRecipient token.Address
}

// BatchResult reports a batch outcome. OpenContexts lists every context
// not yet Closed, on success and failure alike; each one holds rent
// until closed.
type BatchResult struct {
	NewSourceBalance *elgamal.Ciphertext
	SubBatches       int
	Transfers        []*TransferResult
	OpenContexts     []*ProofContext
}

// openContexts collects the contexts from results that still hold rent.
func openContexts(transfers []*TransferResult) []*ProofContext {
	var open []*ProofContext
	for _, tr := range transfers {
		if tr.Context.Open() {
			open = append(open, tr.Context)
		}
	}
	return open
}

// BatchTransfer transfers to every recipient, packing consecutive
// recipients into sub-batches under the compute ceiling. The result is
// non-nil whenever any work was done, so callers can reconcile open
// contexts even on error.
func (c *Coordinator) BatchTransfer(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	c.batchMu.Lock()
	defer c.batchMu.Unlock()

	perBatch := int(c.ceiling / c.proofCost)
	if perBatch == 0 {
		return nil, fmt.Errorf("proof cost %d over ceiling %d: %w", c.proofCost, c.ceiling, ErrResourceBudgetExceeded)
	}

	result := &BatchResult{NewSourceBalance: req.SourceBalance}
	for start := 0; start < len(req.Recipients); start += perBatch {
		end := start + perBatch
		if end > len(req.Recipients) {
			end = len(req.Recipients)
		}
		result.SubBatches++

		for _, rcpt := range req.Recipients[start:end] {
			tr, err := c.Transfer(ctx, TransferRequest{
				Sender:        req.Sender,
				SenderAddress: req.SenderAddress,
				SourceAccount: req.SourceAccount,
				SourceBalance: result.NewSourceBalance,
				DestAccount:   rcpt.Account,
				DestPubkey:    rcpt.Pubkey,
				Amount:        rcpt.Amount,
				AutoCleanup:   req.AutoCleanup,
				RentRecipient: req.RentRecipient,
			})
			if err != nil {
				result.OpenContexts = openContexts(result.Transfers)
				// A failed transfer can still have funded its context.
				if tr != nil && tr.Context != nil && tr.Context.Open() {
					result.OpenContexts = append(result.OpenContexts, tr.Context)
				}
				return result, fmt.Errorf("recipient %s: %w", rcpt.Account, err)
			}
			result.Transfers = append(result.Transfers, tr)
			result.NewSourceBalance = tr.NewSourceBalance
		}

		c.log.Debug().
			Int("sub_batch", result.SubBatches).
			Int("recipients", end-start).
			Uint64("estimated_cost", uint64(end-start)*c.proofCost).
			Msg("sub-batch complete")
	}

	result.OpenContexts = openContexts(result.Transfers)
	return result, nil
}
