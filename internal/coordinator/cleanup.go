// cleanup.go - Out-of-band closing of abandoned proof contexts.
//
// A forgotten context leaks rent indefinitely. Callers are expected to
// reconcile the contexts they tracked against BatchResult.OpenContexts
// and close the remainder with these helpers.

package coordinator

import (
	"context"
	"fmt"

	"github.com/Dexploarer/GhostSpeak-sub009/internal/token"
)

// buildCloseContext builds the close operation for one context. Rent
// flows to rentRecipient.
func (c *Coordinator) buildCloseContext(pc *ProofContext, authority, rentRecipient token.Address) token.Instruction {
	return token.Instruction{
		Program: c.proofProgram,
		Accounts: []token.AccountMeta{
			{Address: pc.Address, Writable: true},
			{Address: rentRecipient, Writable: true},
			{Address: authority, Signer: true},
		},
		Data: token.EncodeCloseContext(),
	}
}

// BuildCleanupOperations produces close operations for every Abandoned
// context in the list. Contexts in other states are skipped, not
// errors: Closed needs nothing and anything mid-flight is still owned
// by its operation.
func (c *Coordinator) BuildCleanupOperations(contexts []*ProofContext, authority, rentRecipient token.Address) []token.Instruction {
	var ops []token.Instruction
	for _, pc := range contexts {
		if pc.State() != StateAbandoned {
			continue
		}
		ops = append(ops, c.buildCloseContext(pc, authority, rentRecipient))
	}
	return ops
}

// CloseAbandoned submits close operations for every Abandoned context
// and marks them Closed. Contexts that fail to close stay Abandoned and
// are returned.
func (c *Coordinator) CloseAbandoned(ctx context.Context, contexts []*ProofContext, authority, rentRecipient token.Address) ([]*ProofContext, error) {
	var remaining []*ProofContext
	var firstErr error
	for _, pc := range contexts {
		if pc.State() != StateAbandoned {
			continue
		}
		op := c.buildCloseContext(pc, authority, rentRecipient)
		if _, err := c.sink.Submit(ctx, []token.Instruction{op}, []token.Address{authority}); err != nil {
			remaining = append(remaining, pc)
			if firstErr == nil {
				firstErr = fmt.Errorf("close context %s: %w", pc.Address, err)
			}
			continue
		}
		if err := pc.Transition(StateClosed); err != nil {
			remaining = append(remaining, pc)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return remaining, firstErr
}
